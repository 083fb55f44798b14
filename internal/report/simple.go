package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/lodprobe/lodprobe/internal/model"
)

// timeRounding keeps elapsed durations readable in text output.
const timeRounding = 10 * time.Millisecond

// SimpleWriter outputs human-readable text reports for terminal
// display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because it works in all terminals and pipes cleanly to
// files and other tools.
type SimpleWriter struct {
	baseWriter

	// maxReferenced caps the referenced hosts shown per provider.
	maxReferenced int
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithMaxReferenced caps the referenced hosts listed per provider.
// Zero shows all of them.
func WithMaxReferenced(n int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.maxReferenced = n
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given
// writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter:    newBaseWriter(output),
		maxReferenced: 5,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable form.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	sb.WriteString("lodprobe provider estimate\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&sb, "Started:        %s\n", report.Stats.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Elapsed:        %s\n", report.Stats.Elapsed.Round(timeRounding))
	fmt.Fprintf(&sb, "Sampling ratio: %g\n", report.Stats.SamplingRatio)
	fmt.Fprintf(&sb, "Datasets:       %d (%d failed)\n", report.Stats.Datasets, report.Stats.Failed)
	fmt.Fprintf(&sb, "Providers:      %d\n", report.ProviderCount())
	sb.WriteString("\n")

	for _, host := range sortedProviders(report) {
		provider := report.Providers[host]
		fmt.Fprintf(&sb, "%s\n", host)
		fmt.Fprintf(&sb, "  triples:  %d\n", provider.Triples)
		fmt.Fprintf(&sb, "  datasets: %d\n", len(provider.Provenance))
		if len(provider.ReferencedHosts) > 0 {
			sb.WriteString("  references:\n")
			for _, ref := range topReferenced(provider.ReferencedHosts, w.maxReferenced) {
				fmt.Fprintf(&sb, "    %-40s %d\n", ref, provider.ReferencedHosts[ref])
			}
			if rest := len(provider.ReferencedHosts) - w.maxReferenced; w.maxReferenced > 0 && rest > 0 {
				fmt.Fprintf(&sb, "    (and %d more)\n", rest)
			}
		}
		sb.WriteString("\n")
	}

	if report.HasFailures() {
		sb.WriteString("Failed datasets\n")
		sb.WriteString(strings.Repeat("-", 60) + "\n")
		for _, failure := range report.Failures {
			fmt.Fprintf(&sb, "  %s\n    %s\n", failure.Endpoint, failure.Error)
		}
		sb.WriteString("\n")
	}

	return w.output.Write([]byte(sb.String()))
}
