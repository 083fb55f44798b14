package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/lodprobe/lodprobe/internal/model"
)

// MarkdownWriter outputs reports in GitHub Flavored Markdown for
// documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent,
// type-safe markdown generation with tables and alerts instead of
// string concatenation.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeProviders(md, report)
	w.writeFailures(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the run summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("Provider Estimate")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", report.Stats.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", report.Stats.Elapsed.Round(timeRounding).String()},
			{"Sampling ratio", strconv.FormatFloat(report.Stats.SamplingRatio, 'g', -1, 64)},
			{"Datasets", strconv.Itoa(report.Stats.Datasets)},
			{"Failed", strconv.Itoa(report.Stats.Failed)},
			{"Providers", strconv.Itoa(report.ProviderCount())},
		},
	})
	md.PlainText("")
}

// writeProviders writes one table of all merged providers plus a
// per-provider provenance section.
func (w *MarkdownWriter) writeProviders(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Providers")
	md.PlainText("")

	hosts := sortedProviders(report)

	rows := make([][]string, 0, len(hosts))
	for _, host := range hosts {
		provider := report.Providers[host]
		top := ""
		if refs := topReferenced(provider.ReferencedHosts, 3); len(refs) > 0 {
			for i, ref := range refs {
				if i > 0 {
					top += ", "
				}
				top += ref
			}
		}
		rows = append(rows, []string{
			"`" + host + "`",
			strconv.FormatInt(provider.Triples, 10),
			strconv.Itoa(len(provider.Provenance)),
			top,
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Provider", "Triples", "Datasets", "Top referenced hosts"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, host := range hosts {
		provider := report.Providers[host]
		md.H3(host)
		md.PlainText("")

		provRows := make([][]string, 0, len(provider.Provenance))
		for _, p := range provider.Provenance {
			provRows = append(provRows, []string{
				"`" + p.Endpoint + "`",
				"`" + p.SourceURL + "`",
				strconv.FormatInt(p.DeclaredTriples, 10),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Endpoint", "Source", "Declared triples"},
			Rows:   provRows,
		})
		md.PlainText("")
	}
}

// writeFailures writes the failed-dataset section, if any.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.RunReport) {
	if !report.HasFailures() {
		return
	}

	md.H2("Failed Datasets")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Failures))
	for _, failure := range report.Failures {
		rows = append(rows, []string{"`" + failure.Endpoint + "`", failure.Error})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Endpoint", "Error"},
		Rows:   rows,
	})
	md.PlainText("")
}
