// Package main provides the entry point for the lodprobe CLI.
//
// lodprobe samples paginated linked-data fragment endpoints and
// estimates which external host each dataset most references, merging
// the results into a per-provider summary.
//
// Usage:
//
//	lodprobe probe --catalog <sparql-endpoint>
//	lodprobe probe --dataset <fragment-endpoint>
//
// See --help for all available options.
package main

// main is the entry point for lodprobe.
func main() {
	Execute()
}
