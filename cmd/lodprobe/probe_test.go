package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lodprobe/lodprobe/internal/config"
	"github.com/lodprobe/lodprobe/internal/database"
	"github.com/lodprobe/lodprobe/internal/model"
)

// TestNewProbeCmd tests the probe command creation.
func TestNewProbeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewProbeCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "probe" {
			t.Errorf("expected use 'probe', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has dataset flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("dataset")
		if flag == nil {
			t.Fatal("expected dataset flag")
		}
		if flag.Shorthand != "d" {
			t.Errorf("expected shorthand 'd', got %q", flag.Shorthand)
		}
	})

	t.Run("has ratio flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("ratio")
		if flag == nil {
			t.Fatal("expected ratio flag")
		}
		if flag.Shorthand != "r" {
			t.Errorf("expected shorthand 'r', got %q", flag.Shorthand)
		}
		if flag.DefValue != "0.1" {
			t.Errorf("expected default '0.1', got %q", flag.DefValue)
		}
	})

	t.Run("has page-size flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("page-size")
		if flag == nil {
			t.Fatal("expected page-size flag")
		}
		if flag.Shorthand != "p" {
			t.Errorf("expected shorthand 'p', got %q", flag.Shorthand)
		}
	})

	t.Run("has timeout flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("timeout")
		if flag == nil {
			t.Fatal("expected timeout flag")
		}
		if flag.Shorthand != "t" {
			t.Errorf("expected shorthand 't', got %q", flag.Shorthand)
		}
	})

	t.Run("has batch flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("batch")
		if flag == nil {
			t.Fatal("expected batch flag")
		}
		if flag.Shorthand != "b" {
			t.Errorf("expected shorthand 'b', got %q", flag.Shorthand)
		}
	})

	t.Run("has keep-going flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("keep-going")
		if flag == nil {
			t.Fatal("expected keep-going flag")
		}
		if flag.Shorthand != "k" {
			t.Errorf("expected shorthand 'k', got %q", flag.Shorthand)
		}
	})

	t.Run("has rollup flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("rollup") == nil {
			t.Fatal("expected rollup flag")
		}
	})

	t.Run("has catalog flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"catalog", "fragment-base", "query"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("has report flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"json", "markdown", "output", "config"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})
}

// TestBuildConfig tests config construction from flags.
func TestBuildConfig(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		cmd := NewProbeCmd()
		if err := cmd.ParseFlags([]string{"--catalog", "https://catalog.example/sparql"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.SamplingRatio != config.DefaultSamplingRatio {
			t.Errorf("expected ratio %v, got %v", config.DefaultSamplingRatio, cfg.SamplingRatio)
		}
		if cfg.PageSize != config.DefaultPageSize {
			t.Errorf("expected page size %d, got %d", config.DefaultPageSize, cfg.PageSize)
		}
		if cfg.Timeout != config.DefaultTimeout {
			t.Errorf("expected timeout %v, got %v", config.DefaultTimeout, cfg.Timeout)
		}
		if cfg.Concurrency != config.DefaultConcurrency {
			t.Errorf("expected concurrency %d, got %d", config.DefaultConcurrency, cfg.Concurrency)
		}
		if cfg.KeepGoing {
			t.Error("expected keep-going to default to false")
		}
		if cfg.Rollup {
			t.Error("expected rollup to default to false")
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("applies flag values", func(t *testing.T) {
		cmd := NewProbeCmd()
		args := []string{
			"--dataset", "https://fragments.example/a,https://a.example/dump.ttl,1000",
			"--ratio", "0.5",
			"--page-size", "50",
			"--batch", "3",
			"--keep-going",
			"--rollup",
			"--json",
			"--output", "out.json",
		}
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg, err := buildConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cfg.Datasets) != 1 {
			t.Fatalf("expected 1 dataset, got %d", len(cfg.Datasets))
		}
		if cfg.SamplingRatio != 0.5 {
			t.Errorf("expected ratio 0.5, got %v", cfg.SamplingRatio)
		}
		if cfg.PageSize != 50 {
			t.Errorf("expected page size 50, got %d", cfg.PageSize)
		}
		if cfg.Concurrency != 3 {
			t.Errorf("expected concurrency 3, got %d", cfg.Concurrency)
		}
		if !cfg.KeepGoing {
			t.Error("expected keep-going to be true")
		}
		if !cfg.Rollup {
			t.Error("expected rollup to be true")
		}
		if !cfg.JSONReport {
			t.Error("expected JSON report to be true")
		}
		if cfg.ReportFile != "out.json" {
			t.Errorf("expected report file 'out.json', got %q", cfg.ReportFile)
		}
	})

	t.Run("fails for missing explicit config file", func(t *testing.T) {
		cmd := NewProbeCmd()
		args := []string{
			"--catalog", "https://catalog.example/sparql",
			"--config", filepath.Join(t.TempDir(), "does-not-exist.yaml"),
		}
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		if _, err := buildConfig(cmd); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})
}

// TestParseDatasetSpec tests --dataset flag parsing.
func TestParseDatasetSpec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		spec    string
		want    model.Dataset
		wantErr bool
	}{
		{
			name: "endpoint only",
			spec: "https://fragments.example/a",
			want: model.Dataset{Endpoint: "https://fragments.example/a"},
		},
		{
			name: "endpoint and source",
			spec: "https://fragments.example/a,https://a.example/dump.ttl",
			want: model.Dataset{
				Endpoint:  "https://fragments.example/a",
				SourceURL: "https://a.example/dump.ttl",
			},
		},
		{
			name: "endpoint source and triples",
			spec: "https://fragments.example/a,https://a.example/dump.ttl,120000",
			want: model.Dataset{
				Endpoint:        "https://fragments.example/a",
				SourceURL:       "https://a.example/dump.ttl",
				DeclaredTriples: 120000,
			},
		},
		{
			name: "whitespace is trimmed",
			spec: " https://fragments.example/a , https://a.example/dump.ttl , 42 ",
			want: model.Dataset{
				Endpoint:        "https://fragments.example/a",
				SourceURL:       "https://a.example/dump.ttl",
				DeclaredTriples: 42,
			},
		},
		{
			name:    "empty endpoint",
			spec:    ",https://a.example/dump.ttl",
			wantErr: true,
		},
		{
			name:    "non-numeric triple count",
			spec:    "https://fragments.example/a,source,lots",
			wantErr: true,
		},
		{
			name:    "negative triple count",
			spec:    "https://fragments.example/a,source,-1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseDatasetSpec(tt.spec)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseDatasetSpec(%q) expected error", tt.spec)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDatasetSpec(%q) unexpected error: %v", tt.spec, err)
			}
			if got != tt.want {
				t.Errorf("parseDatasetSpec(%q) = %+v, want %+v", tt.spec, got, tt.want)
			}
		})
	}
}

// newTestFragmentServer serves a minimal paginated TriG fragment
// endpoint: size metadata on the root fragment, one fixed page body.
func newTestFragmentServer(t *testing.T, declared int64, page string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/trig")
		if r.URL.Query().Get("page") == "" {
			fmt.Fprintf(w, "<urn:meta> {\n\t<%s> <http://rdfs.org/ns/void#triples> \"%d\"^^<http://www.w3.org/2001/XMLSchema#integer> .\n}\n",
				"http://"+r.Host, declared)
			return
		}
		fmt.Fprint(w, page)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestRunProbe exercises the full probe flow against a local fragment
// server, from dataset flags to the written report and the saved run.
func TestRunProbe(t *testing.T) {
	srv := newTestFragmentServer(t, 100,
		"<http://a.org/x> <urn:rel> <http://b.org/y> .\n<http://a.org/z> <urn:rel> <http://a.org/w> .\n")

	reportFile := filepath.Join(t.TempDir(), "reports", "run.json")
	dbDir := t.TempDir()

	cfg := config.NewConfig()
	cfg.Datasets = []string{srv.URL + ",http://source.example/dump.ttl"}
	cfg.SamplingRatio = 1.0
	cfg.JSONReport = true
	cfg.ReportFile = reportFile
	cfg.SaveToDB = true
	cfg.DBDir = dbDir
	cfg.Endpoints = &config.File{Endpoints: map[string]config.EndpointConfig{}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := runProbe(context.Background(), cfg, logger); err != nil {
		t.Fatalf("runProbe() returned error: %v", err)
	}

	// The written report names a.org as the dominant provider.
	data, err := os.ReadFile(reportFile)
	if err != nil {
		t.Fatalf("failed to read report file: %v", err)
	}

	var runReport model.RunReport
	if err := json.Unmarshal(data, &runReport); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	provider, ok := runReport.Providers["a.org"]
	if !ok {
		t.Fatalf("expected provider a.org, got %v", runReport.Providers)
	}
	if provider.Triples != 100 {
		t.Errorf("expected 100 triples, got %d", provider.Triples)
	}
	if provider.ReferencedHosts["b.org"] != 1 {
		t.Errorf("expected b.org reference count 1, got %d", provider.ReferencedHosts["b.org"])
	}
	if runReport.Stats.Datasets != 1 {
		t.Errorf("expected 1 dataset in stats, got %d", runReport.Stats.Datasets)
	}

	// The completed run is listed in the history database.
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns() returned error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 saved run, got %d", len(runs))
	}
	if runs[0].Providers != 1 {
		t.Errorf("expected 1 provider in saved run, got %d", runs[0].Providers)
	}
	if time.Since(runs[0].StartedAt) > time.Hour {
		t.Errorf("saved run has implausible start time: %v", runs[0].StartedAt)
	}
}

// TestRunProbeKeepGoing verifies partial results survive a failing
// dataset when keep-going is enabled.
func TestRunProbeKeepGoing(t *testing.T) {
	good := newTestFragmentServer(t, 100,
		"<http://a.org/x> <urn:rel> <http://a.org/y> .\n")

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(failing.Close)

	reportFile := filepath.Join(t.TempDir(), "run.json")

	cfg := config.NewConfig()
	cfg.Datasets = []string{good.URL, failing.URL}
	cfg.SamplingRatio = 1.0
	cfg.Concurrency = 1 // sequential path
	cfg.KeepGoing = true
	cfg.JSONReport = true
	cfg.ReportFile = reportFile
	cfg.DBDir = t.TempDir()
	cfg.SaveToDB = false
	cfg.Endpoints = &config.File{Endpoints: map[string]config.EndpointConfig{}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := runProbe(context.Background(), cfg, logger); err != nil {
		t.Fatalf("runProbe() returned error: %v", err)
	}

	data, err := os.ReadFile(reportFile)
	if err != nil {
		t.Fatalf("failed to read report file: %v", err)
	}

	var runReport model.RunReport
	if err := json.Unmarshal(data, &runReport); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	if _, ok := runReport.Providers["a.org"]; !ok {
		t.Errorf("expected provider a.org despite failing sibling, got %v", runReport.Providers)
	}
	if len(runReport.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(runReport.Failures))
	}
	if runReport.Failures[0].Endpoint != failing.URL {
		t.Errorf("expected failure for %s, got %s", failing.URL, runReport.Failures[0].Endpoint)
	}
	if runReport.Stats.Failed != 1 {
		t.Errorf("expected 1 failed dataset in stats, got %d", runReport.Stats.Failed)
	}
}

// TestRunProbeAbortsOnFailure verifies the default all-or-nothing
// behavior: one failing dataset fails the whole run.
func TestRunProbeAbortsOnFailure(t *testing.T) {
	good := newTestFragmentServer(t, 100,
		"<http://a.org/x> <urn:rel> <http://a.org/y> .\n")

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(failing.Close)

	cfg := config.NewConfig()
	cfg.Datasets = []string{good.URL, failing.URL}
	cfg.SamplingRatio = 1.0
	cfg.Concurrency = 1
	cfg.ReportFile = filepath.Join(t.TempDir(), "run.json")
	cfg.SaveToDB = false
	cfg.Endpoints = &config.File{Endpoints: map[string]config.EndpointConfig{}}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if err := runProbe(context.Background(), cfg, logger); err == nil {
		t.Error("expected run to fail when a dataset fails without keep-going")
	}
}
