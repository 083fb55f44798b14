package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lodprobe/lodprobe/internal/model"
)

func sampleRunReport() *model.RunReport {
	return &model.RunReport{
		Providers: map[string]*model.MergedProvider{
			"foo.org": {
				Triples: 300,
				Provenance: []model.Provenance{
					{Endpoint: "https://fragments.example/a", SourceURL: "https://a.example/data.ttl", DeclaredTriples: 100},
					{Endpoint: "https://fragments.example/b", SourceURL: "https://b.example/data.ttl", DeclaredTriples: 200},
				},
				ReferencedHosts: map[string]int{"bar.org": 7},
			},
		},
		Stats: model.RunStats{
			StartedAt:     time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
			Elapsed:       1500 * time.Millisecond,
			SamplingRatio: 0.1,
			Datasets:      2,
			Failed:        0,
		},
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database with default options", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		hdb, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open() returned error: %v", err)
		}
		defer hdb.Close()

		want := filepath.Join(dir, "lodprobe.db")
		if hdb.Path() != want {
			t.Errorf("Path() = %q, want %q", hdb.Path(), want)
		}
	})

	t.Run("fails when database missing and creation disabled", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		_, err := Open(dir, Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("Open() should fail for a missing database when CreateIfNotExists is false")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		hdb, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open() returned error: %v", err)
		}
		if err := hdb.Close(); err != nil {
			t.Fatalf("Close() returned error: %v", err)
		}

		hdb2, err := Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("reopen returned error: %v", err)
		}
		defer hdb2.Close()
	})
}

func TestHistoryDB_SaveRun(t *testing.T) {
	t.Parallel()

	hdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	defer hdb.Close()

	ctx := context.Background()
	report := sampleRunReport()

	id, err := hdb.SaveRun(ctx, report)
	if err != nil {
		t.Fatalf("SaveRun() returned error: %v", err)
	}
	if id <= 0 {
		t.Errorf("SaveRun() returned id %d, want > 0", id)
	}

	got, err := hdb.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun() returned error: %v", err)
	}
	if got.ProviderCount() != 1 {
		t.Errorf("ProviderCount() = %d, want 1", got.ProviderCount())
	}
	provider, ok := got.Providers["foo.org"]
	if !ok {
		t.Fatal("stored report is missing provider foo.org")
	}
	if provider.Triples != 300 {
		t.Errorf("Triples = %d, want 300", provider.Triples)
	}
	if len(provider.Provenance) != 2 {
		t.Errorf("len(Provenance) = %d, want 2", len(provider.Provenance))
	}
	if provider.ReferencedHosts["bar.org"] != 7 {
		t.Errorf("ReferencedHosts[bar.org] = %d, want 7", provider.ReferencedHosts["bar.org"])
	}
}

func TestHistoryDB_ListRuns(t *testing.T) {
	t.Parallel()

	hdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	defer hdb.Close()

	ctx := context.Background()

	for i := range 3 {
		report := sampleRunReport()
		report.Stats.StartedAt = report.Stats.StartedAt.Add(time.Duration(i) * time.Hour)
		report.Stats.Datasets = i + 1
		if _, err := hdb.SaveRun(ctx, report); err != nil {
			t.Fatalf("SaveRun() returned error: %v", err)
		}
	}

	t.Run("returns newest first", func(t *testing.T) {
		runs, err := hdb.ListRuns(ctx, 0)
		if err != nil {
			t.Fatalf("ListRuns() returned error: %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("len(runs) = %d, want 3", len(runs))
		}
		if runs[0].Datasets != 3 {
			t.Errorf("newest run Datasets = %d, want 3", runs[0].Datasets)
		}
		if !runs[0].StartedAt.After(runs[2].StartedAt) {
			t.Errorf("runs are not ordered newest first: %v then %v", runs[0].StartedAt, runs[2].StartedAt)
		}
		if runs[0].Elapsed != 1500*time.Millisecond {
			t.Errorf("Elapsed = %v, want 1.5s", runs[0].Elapsed)
		}
		if runs[0].SamplingRatio != 0.1 {
			t.Errorf("SamplingRatio = %v, want 0.1", runs[0].SamplingRatio)
		}
		if runs[0].Providers != 1 {
			t.Errorf("Providers = %d, want 1", runs[0].Providers)
		}
	})

	t.Run("honors the limit", func(t *testing.T) {
		runs, err := hdb.ListRuns(ctx, 2)
		if err != nil {
			t.Fatalf("ListRuns() returned error: %v", err)
		}
		if len(runs) != 2 {
			t.Errorf("len(runs) = %d, want 2", len(runs))
		}
	})
}

func TestHistoryDB_GetRun_notFound(t *testing.T) {
	t.Parallel()

	hdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() returned error: %v", err)
	}
	defer hdb.Close()

	if _, err := hdb.GetRun(context.Background(), 42); err == nil {
		t.Error("GetRun() should fail for an unknown id")
	}
}
