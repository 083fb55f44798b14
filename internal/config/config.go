package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultSamplingRatio samples a tenth of each dataset's pages.
	// This keeps fetch volume low while the dominant host estimate
	// remains stable for datasets of realistic skew; raise it for more
	// accuracy at the cost of proportionally more requests.
	DefaultSamplingRatio = 0.1

	// DefaultPageSize is the triples-per-page assumed for fragment
	// resources. 100 is the page size used by common fragment servers.
	DefaultPageSize = 100

	// DefaultTimeout applies per HTTP request. Fragment pages are
	// small, but public endpoints can be slow under load.
	DefaultTimeout = 60 * time.Second

	// DefaultConcurrency is the number of datasets analyzed at once.
	// Page fetches within a dataset fan out without a cap, so the
	// effective request concurrency is higher; 10 keeps the total
	// connection count manageable for large catalogs.
	DefaultConcurrency = 10

	// DefaultUserAgent identifies lodprobe in HTTP requests so endpoint
	// operators can recognize sampler traffic in their logs.
	DefaultUserAgent = "lodprobe/1.0 (+https://github.com/lodprobe/lodprobe)"

	// DefaultMaxBodySize limits the bytes read per fragment page.
	// A page holds on the order of a hundred triples; 10MB is far above
	// any well-behaved response.
	DefaultMaxBodySize = 10 * 1024 * 1024

	// AppName is the application name used for XDG directory paths.
	AppName = "lodprobe"
)

// Config holds all configuration options for lodprobe.
// It is populated from CLI flags and the optional config file, then
// passed through the application by dependency injection rather than
// global state.
//
// Design decision: We use a single flat struct instead of nested
// sub-structs. The number of options is manageable, and nesting would
// add complexity without significant benefit.
type Config struct {
	// CatalogEndpoint is the SPARQL endpoint of the metadata catalog
	// used for dataset discovery. Empty when datasets are given
	// directly via Datasets.
	CatalogEndpoint string

	// FragmentBase is the base URL under which discovered datasets'
	// fragment resources live. Empty means the catalog's dataset
	// identifiers are fragment endpoints themselves.
	FragmentBase string

	// CatalogQuery overrides the discovery SELECT query. Empty uses
	// the built-in default.
	CatalogQuery string

	// Datasets lists fragment endpoints to analyze directly, bypassing
	// discovery. Each entry is "endpoint[,sourceURL[,declaredTriples]]".
	Datasets []string

	// SamplingRatio is the fraction of pages sampled per dataset,
	// in (0, 1]. It trades estimate accuracy for fetch volume.
	SamplingRatio float64

	// PageSize is the triples-per-page assumed for pagination.
	PageSize int

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// Concurrency caps concurrently analyzed datasets.
	Concurrency int

	// KeepGoing collects per-dataset failures and reports partial
	// results instead of aborting the run on the first failure.
	KeepGoing bool

	// Rollup aggregates hosts by registrable domain (public suffix
	// list) instead of full hostname.
	Rollup bool

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// JSONReport selects JSON output. Mutually exclusive with
	// MarkdownReport; the default is a human-readable summary.
	JSONReport bool

	// MarkdownReport selects Markdown output. Mutually exclusive with
	// JSONReport.
	MarkdownReport bool

	// ReportFile writes the report to this path instead of stdout.
	// Directories are created as needed.
	ReportFile string

	// ConfigFilePath is the path of the configuration file. Empty
	// triggers the default search (cwd, then home directory).
	ConfigFilePath string

	// Endpoints holds per-endpoint overrides loaded from the config
	// file.
	Endpoints *File

	// DBDir is the directory of the run-history database. When set,
	// completed runs are persisted for `lodprobe history`.
	DBDir string

	// SaveToDB indicates whether to persist completed runs.
	SaveToDB bool

	// UserAgent is the User-Agent header for all HTTP requests.
	UserAgent string

	// MaxBodySize limits the bytes read per fragment page.
	MaxBodySize int64
}

// NewConfig creates a Config with default values.
//
// Design decision: We use a constructor instead of relying on zero
// values because most defaults are non-zero. The constructor also
// documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		SamplingRatio: DefaultSamplingRatio,
		PageSize:      DefaultPageSize,
		Timeout:       DefaultTimeout,
		Concurrency:   DefaultConcurrency,
		UserAgent:     DefaultUserAgent,
		MaxBodySize:   DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for lodprobe.
// On Linux: ~/.local/share/lodprobe
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for lodprobe.
// On Linux: ~/.config/lodprobe
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns a specific error for
// the first problem found. It is called once after flag parsing,
// before any network activity.
func (c *Config) Validate() error {
	if c.CatalogEndpoint == "" && len(c.Datasets) == 0 {
		return ErrNoDatasets
	}

	if c.SamplingRatio <= 0 || c.SamplingRatio > 1 {
		return ErrInvalidRatio
	}

	if c.PageSize <= 0 {
		return ErrInvalidPageSize
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
