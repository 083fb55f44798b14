package model

// DatasetAnalysis is the terminal output of analyzing one dataset:
// the dataset itself plus the hostname occurrence counts accumulated
// across all sampled pages.
type DatasetAnalysis struct {
	// Dataset is the analyzed dataset with its authoritative triple count.
	Dataset Dataset `json:"dataset"`

	// HostOccurrences maps each referenced hostname to the number of
	// IRI term positions that referenced it across the sampled triples.
	// Ownership transfers from the aggregator to this struct once
	// sampling completes; it is never mutated afterwards.
	HostOccurrences map[string]int `json:"hostOccurrences"`
}

// ProcessedDataset is a DatasetAnalysis after dominant-host selection.
// MostOccurringHost has been removed from ReferencedHosts.
type ProcessedDataset struct {
	// MostOccurringHost is the hostname with the highest occurrence
	// count; ties resolve to the lexicographically smallest hostname.
	MostOccurringHost string `json:"mostOccurringHost"`

	// Provenance identifies the dataset this result came from.
	Provenance Provenance `json:"provenance"`

	// ReferencedHosts holds the remaining host counts after the
	// dominant host was removed.
	ReferencedHosts map[string]int `json:"referencedHosts"`
}

// MergedProvider summarizes all datasets sharing one dominant host.
type MergedProvider struct {
	// Triples is the sum of DeclaredTriples across all merged datasets.
	Triples int64 `json:"triples"`

	// Provenance lists the contributing datasets in input order.
	Provenance []Provenance `json:"provenance"`

	// ReferencedHosts is the element-wise sum of the merged datasets'
	// referenced-host counts.
	ReferencedHosts map[string]int `json:"referencedHosts"`
}
