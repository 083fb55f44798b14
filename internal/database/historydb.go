package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/lodprobe/lodprobe/internal/model"
)

// HistoryDB stores completed run reports in a SQLite database.
//
// Design decision: One database file for all runs rather than a file
// per run. This keeps listing and pruning trivial and matches how the
// history is queried.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file and directory if they
	// do not exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended for most use
	// cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the given directory.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "lodprobe.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer; the history is written once per run.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the path of the database file.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the schema if it does not exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		sampling_ratio REAL NOT NULL,
		datasets INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		providers INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun persists one completed run report and returns its row id.
func (hdb *HistoryDB) SaveRun(ctx context.Context, report *model.RunReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal report: %w", err)
	}

	result, err := hdb.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, elapsed_ms, sampling_ratio, datasets, failed, providers, report_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.Stats.StartedAt.UTC().Format(time.RFC3339),
		report.Stats.Elapsed.Milliseconds(),
		report.Stats.SamplingRatio,
		report.Stats.Datasets,
		report.Stats.Failed,
		report.ProviderCount(),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return result.LastInsertId()
}

// RunSummary is one row of the run history.
type RunSummary struct {
	// ID is the run's row id.
	ID int64

	// StartedAt is when the run began.
	StartedAt time.Time

	// Elapsed is the run's wall-clock duration.
	Elapsed time.Duration

	// SamplingRatio is the ratio the run sampled at.
	SamplingRatio float64

	// Datasets is the number of datasets analyzed.
	Datasets int

	// Failed is the number of datasets that failed.
	Failed int

	// Providers is the number of merged providers found.
	Providers int
}

// ListRuns returns the most recent runs, newest first, up to limit.
// A limit of 0 returns all runs.
func (hdb *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	query := `SELECT id, started_at, elapsed_ms, sampling_ratio, datasets, failed, providers
		FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var s RunSummary
		var startedAt string
		var elapsedMS int64
		if err := rows.Scan(&s.ID, &startedAt, &elapsedMS, &s.SamplingRatio, &s.Datasets, &s.Failed, &s.Providers); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
			s.StartedAt = t
		}
		s.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// GetRun loads one stored run report by row id.
func (hdb *HistoryDB) GetRun(ctx context.Context, id int64) (*model.RunReport, error) {
	var reportJSON string
	err := hdb.db.QueryRowContext(ctx,
		"SELECT report_json FROM runs WHERE id = ?", id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %d: %w", id, err)
	}

	var report model.RunReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run %d: %w", id, err)
	}
	return &report, nil
}
