package model

import "time"

// RunReport is the output of one lodprobe run: the merged provider
// mapping plus run statistics. It is the unit consumed by the report
// writers and persisted to the run store.
type RunReport struct {
	// Providers maps each dominant hostname to its merged provider
	// summary.
	Providers map[string]*MergedProvider `json:"providers"`

	// Failures lists datasets that could not be analyzed. It is only
	// populated when the run continues past failures; by default the
	// first failure aborts the run and no report is produced.
	Failures []DatasetFailure `json:"failures,omitempty"`

	// Stats summarizes the run.
	Stats RunStats `json:"stats"`
}

// DatasetFailure records one dataset that failed to analyze.
type DatasetFailure struct {
	// Endpoint is the fragment endpoint of the failed dataset.
	Endpoint string `json:"endpoint"`

	// Error is the failure message.
	Error string `json:"error"`
}

// RunStats summarizes one run.
type RunStats struct {
	// StartedAt is when the run began.
	StartedAt time.Time `json:"startedAt"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`

	// SamplingRatio is the ratio of pages sampled per dataset.
	SamplingRatio float64 `json:"samplingRatio"`

	// Datasets is the number of datasets analyzed, including failures.
	Datasets int `json:"datasets"`

	// Failed is the number of datasets that failed to analyze.
	Failed int `json:"failed"`
}

// ProviderCount returns the number of merged providers in the report.
func (r *RunReport) ProviderCount() int {
	return len(r.Providers)
}

// HasFailures reports whether any dataset failed during the run.
func (r *RunReport) HasFailures() bool {
	return len(r.Failures) > 0
}
