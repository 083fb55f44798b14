// Package model defines the core data structures shared across lodprobe.
// It contains the dataset descriptors produced by discovery, the RDF
// triple representation streamed from fragment pages, the per-dataset
// analysis results, and the merged provider report.
//
// This package has no dependencies on other internal packages,
// allowing it to be imported by all layers without circular imports.
package model
