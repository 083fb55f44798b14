package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/lodprobe/lodprobe/internal/model"
)

// sampleReport builds a two-provider report for tests.
func sampleReport() *model.RunReport {
	return &model.RunReport{
		Providers: map[string]*model.MergedProvider{
			"foo.org": {
				Triples: 300,
				Provenance: []model.Provenance{
					{Endpoint: "http://ldf.example/ds1", SourceURL: "http://foo.org/d1.nt", DeclaredTriples: 100},
					{Endpoint: "http://ldf.example/ds2", SourceURL: "http://foo.org/d2.nt", DeclaredTriples: 200},
				},
				ReferencedHosts: map[string]int{"bar.org": 7, "baz.org": 2},
			},
			"bar.org": {
				Triples: 50,
				Provenance: []model.Provenance{
					{Endpoint: "http://ldf.example/ds3", SourceURL: "http://bar.org/d.nt", DeclaredTriples: 50},
				},
				ReferencedHosts: map[string]int{"foo.org": 1},
			},
		},
		Stats: model.RunStats{
			StartedAt:     time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
			Elapsed:       1500 * time.Millisecond,
			SamplingRatio: 0.1,
			Datasets:      3,
		},
	}
}

// TestJSONWriter tests JSON output.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("emits a parseable document", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(sampleReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.RunReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Providers["foo.org"].Triples != 300 {
			t.Errorf("round trip lost data: %+v", decoded.Providers["foo.org"])
		}
		if len(decoded.Providers["foo.org"].Provenance) != 2 {
			t.Errorf("expected 2 provenance records, got %d",
				len(decoded.Providers["foo.org"].Provenance))
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(sampleReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})
}

// TestSimpleWriter tests the human-readable output.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("orders providers by triple count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(sampleReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		out := buf.String()
		fooIdx := strings.Index(out, "foo.org\n")
		barIdx := strings.Index(out, "bar.org\n")
		if fooIdx < 0 || barIdx < 0 {
			t.Fatalf("missing providers in output:\n%s", out)
		}
		if fooIdx > barIdx {
			t.Error("foo.org (300 triples) must precede bar.org (50 triples)")
		}
		if !strings.Contains(out, "Datasets:       3") {
			t.Errorf("missing dataset count:\n%s", out)
		}
	})

	t.Run("lists failures when present", func(t *testing.T) {
		t.Parallel()

		report := sampleReport()
		report.Failures = []model.DatasetFailure{
			{Endpoint: "http://ldf.example/bad", Error: "fragment fetch: unexpected status 500"},
		}
		report.Stats.Failed = 1

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Failed datasets") {
			t.Errorf("missing failure section:\n%s", buf.String())
		}
		if !strings.Contains(buf.String(), "http://ldf.example/bad") {
			t.Errorf("missing failed endpoint:\n%s", buf.String())
		}
	})
}

// TestMarkdownWriter tests the markdown output.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(sampleReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Provider Estimate",
		"## Providers",
		"`foo.org`",
		"300",
		"http://ldf.example/ds1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

// TestMultiWriter tests fan-out to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewJSONWriter(&a), NewSimpleWriter(&b))

	if _, err := mw.Write(sampleReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Len() == 0 || b.Len() == 0 {
		t.Error("expected output in both writers")
	}
}

// TestTopReferenced tests the referenced-host ordering helper.
func TestTopReferenced(t *testing.T) {
	t.Parallel()

	refs := map[string]int{"c.org": 3, "a.org": 3, "b.org": 9, "d.org": 1}

	got := topReferenced(refs, 3)
	want := []string{"b.org", "a.org", "c.org"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
