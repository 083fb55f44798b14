package config

import "errors"

// Configuration validation errors returned by Config.Validate().
//
// Design decision: Package-level sentinel errors let callers use
// errors.Is() for programmatic handling while still carrying
// human-readable messages.
var (
	// ErrNoDatasets is returned when neither a catalog endpoint nor any
	// direct dataset endpoint is configured.
	ErrNoDatasets = errors.New("no datasets: provide a catalog endpoint or use --dataset")

	// ErrInvalidRatio is returned when the sampling ratio is outside
	// (0, 1].
	ErrInvalidRatio = errors.New("invalid sampling ratio: must be in (0, 1]")

	// ErrInvalidPageSize is returned when the page size is not positive.
	ErrInvalidPageSize = errors.New("invalid page size: must be positive")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the dataset concurrency is
	// not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is
	// negative. Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
