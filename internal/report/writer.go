// Package report renders run results in JSON, Markdown, and
// human-readable text.
package report

import (
	"io"
	"sort"

	"github.com/lodprobe/lodprobe/internal/model"
)

// Writer defines the interface for report output.
//
// Design decision: We use an interface to allow different output
// formats and destinations. Writing to files, stdout, or both uses the
// same API.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.RunReport) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously, useful for
// writing to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers. It returns the
// total bytes written and stops on the first error encountered.
func (m *MultiWriter) Write(report *model.RunReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// sortedProviders returns the provider hostnames ordered by descending
// triple count, ties broken by hostname. Map iteration order is
// randomized, so every text format sorts before rendering.
func sortedProviders(report *model.RunReport) []string {
	hosts := make([]string, 0, len(report.Providers))
	for host := range report.Providers {
		hosts = append(hosts, host)
	}
	sort.Slice(hosts, func(i, j int) bool {
		a, b := report.Providers[hosts[i]], report.Providers[hosts[j]]
		if a.Triples != b.Triples {
			return a.Triples > b.Triples
		}
		return hosts[i] < hosts[j]
	})
	return hosts
}

// topReferenced returns up to limit referenced hosts ordered by
// descending count, ties broken by hostname.
func topReferenced(referenced map[string]int, limit int) []string {
	hosts := make([]string, 0, len(referenced))
	for host := range referenced {
		hosts = append(hosts, host)
	}
	sort.Slice(hosts, func(i, j int) bool {
		if referenced[hosts[i]] != referenced[hosts[j]] {
			return referenced[hosts[i]] > referenced[hosts[j]]
		}
		return hosts[i] < hosts[j]
	})
	if limit > 0 && len(hosts) > limit {
		hosts = hosts[:limit]
	}
	return hosts
}
