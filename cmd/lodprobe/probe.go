package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/lodprobe/lodprobe/internal/aggregate"
	"github.com/lodprobe/lodprobe/internal/analyzer"
	"github.com/lodprobe/lodprobe/internal/config"
	"github.com/lodprobe/lodprobe/internal/database"
	"github.com/lodprobe/lodprobe/internal/discovery"
	"github.com/lodprobe/lodprobe/internal/fragment"
	"github.com/lodprobe/lodprobe/internal/iri"
	"github.com/lodprobe/lodprobe/internal/log"
	"github.com/lodprobe/lodprobe/internal/model"
	"github.com/lodprobe/lodprobe/internal/report"
	"github.com/spf13/cobra"
)

// NewProbeCmd creates the probe command.
func NewProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Sample datasets and estimate their dominant referenced hosts",
		Long: `Probe analyzes a set of linked-data datasets exposed as paginated
triple-fragment resources. For each dataset it reads the declared triple
count, samples a fraction of the pages evenly across the dataset, counts
which hosts the sampled triples reference, and selects the most referenced
host. Datasets sharing a dominant host are merged into one provider entry.

Datasets come from a SPARQL catalog (--catalog) or are listed directly
with repeated --dataset flags.

Examples:
  # Discover datasets from a catalog and probe them
  lodprobe probe --catalog https://catalog.example.org/sparql

  # Probe two endpoints directly, with known triple counts
  lodprobe probe \
    --dataset "https://fragments.example.org/a,https://a.example/dump.ttl,120000" \
    --dataset "https://fragments.example.org/b,https://b.example/dump.ttl,80000"

  # Sample half of every dataset and keep going past failures
  lodprobe probe --catalog https://catalog.example.org/sparql --ratio 0.5 --keep-going

  # Aggregate by registrable domain and write a Markdown report
  lodprobe probe --catalog https://catalog.example.org/sparql --rollup --markdown -o report.md`,
		Args: cobra.NoArgs,
		RunE: runProbeCmd,
	}

	// Dataset source flags
	cmd.Flags().String("catalog", "",
		"SPARQL endpoint of the metadata catalog used for dataset discovery")
	cmd.Flags().String("fragment-base", "",
		"Base URL under which discovered datasets' fragment resources live")
	cmd.Flags().String("query", "",
		"Override the discovery SELECT query (default: built-in void/dcat query)")
	cmd.Flags().StringArrayP("dataset", "d", nil,
		"Fragment endpoint to probe directly: \"endpoint[,sourceURL[,declaredTriples]]\" (repeatable)")

	// Sampling flags
	cmd.Flags().Float64P("ratio", "r", config.DefaultSamplingRatio,
		"Fraction of each dataset's pages to sample, in (0, 1]")
	cmd.Flags().IntP("page-size", "p", config.DefaultPageSize,
		"Triples per fragment page assumed for pagination")

	// Fetch behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().IntP("batch", "b", config.DefaultConcurrency,
		"Number of concurrently analyzed datasets")
	cmd.Flags().BoolP("keep-going", "k", false,
		"Collect per-dataset failures and report partial results instead of aborting")

	// Aggregation flags
	cmd.Flags().Bool("rollup", false,
		"Aggregate hosts by registrable domain instead of full hostname")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .lodprobe in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runProbeCmd executes the probe command.
func runProbeCmd(cmd *cobra.Command, _ []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	logger := log.NewTrimLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runProbe(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.CatalogEndpoint, err = cmd.Flags().GetString("catalog")
	if err != nil {
		return nil, err
	}

	cfg.FragmentBase, err = cmd.Flags().GetString("fragment-base")
	if err != nil {
		return nil, err
	}

	cfg.CatalogQuery, err = cmd.Flags().GetString("query")
	if err != nil {
		return nil, err
	}

	cfg.Datasets, err = cmd.Flags().GetStringArray("dataset")
	if err != nil {
		return nil, err
	}

	cfg.SamplingRatio, err = cmd.Flags().GetFloat64("ratio")
	if err != nil {
		return nil, err
	}

	cfg.PageSize, err = cmd.Flags().GetInt("page-size")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.KeepGoing, err = cmd.Flags().GetBool("keep-going")
	if err != nil {
		return nil, err
	}

	cfg.Rollup, err = cmd.Flags().GetBool("rollup")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-endpoint configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Endpoints, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.Endpoints = &config.File{
			Endpoints: make(map[string]config.EndpointConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Always save completed runs using the XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// parseDatasetSpec parses one --dataset flag value of the form
// "endpoint[,sourceURL[,declaredTriples]]".
func parseDatasetSpec(spec string) (model.Dataset, error) {
	parts := strings.SplitN(spec, ",", 3)

	endpoint := strings.TrimSpace(parts[0])
	if endpoint == "" {
		return model.Dataset{}, fmt.Errorf("invalid dataset %q: endpoint is required", spec)
	}

	dataset := model.Dataset{Endpoint: endpoint}

	if len(parts) > 1 {
		dataset.SourceURL = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		triples, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
		if err != nil {
			return model.Dataset{}, fmt.Errorf("invalid dataset %q: triple count: %w", spec, err)
		}
		if triples < 0 {
			return model.Dataset{}, fmt.Errorf("invalid dataset %q: triple count must not be negative", spec)
		}
		dataset.DeclaredTriples = triples
	}

	return dataset, nil
}

// runProbe executes the probe.
func runProbe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	startedAt := time.Now()

	datasets, err := resolveDatasets(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if len(datasets) == 0 {
		return errors.New("no datasets to probe (catalog returned none)")
	}

	logger.Info("starting probe",
		"datasets", len(datasets),
		"ratio", cfg.SamplingRatio,
		"concurrency", cfg.Concurrency,
		"rollup", cfg.Rollup,
	)

	// Open database connection if saving is enabled
	var db *database.HistoryDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Debug("database opened", "dir", cfg.DBDir)
	}

	var analyses []model.DatasetAnalysis
	var failures []model.DatasetFailure

	// Use the batch analyzer for parallel probing if multiple datasets.
	// Batch mode shares one fragment client, so per-endpoint overrides
	// only apply in sequential mode.
	if len(datasets) > 1 && cfg.Concurrency > 1 {
		analyses, failures, err = runBatchProbe(ctx, cfg, datasets, logger)
	} else {
		analyses, failures, err = runSequentialProbe(ctx, cfg, datasets, logger)
	}
	if err != nil {
		return err
	}

	runReport := &model.RunReport{
		Providers: aggregate.Merge(analyses),
		Failures:  failures,
		Stats: model.RunStats{
			StartedAt:     startedAt,
			Elapsed:       time.Since(startedAt),
			SamplingRatio: cfg.SamplingRatio,
			Datasets:      len(datasets),
			Failed:        len(failures),
		},
	}

	fmt.Printf("Probe completed in %s\n\n", runReport.Stats.Elapsed.Round(time.Millisecond))

	if err := outputReport(cfg, runReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return saveRunReport(ctx, db, runReport, logger)
}

// resolveDatasets returns the datasets to probe, either parsed from the
// --dataset flags or discovered from the catalog.
func resolveDatasets(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]model.Dataset, error) {
	if len(cfg.Datasets) > 0 {
		datasets := make([]model.Dataset, 0, len(cfg.Datasets))
		for _, spec := range cfg.Datasets {
			dataset, err := parseDatasetSpec(spec)
			if err != nil {
				return nil, err
			}
			datasets = append(datasets, dataset)
		}
		return datasets, nil
	}

	catalogOpts := []discovery.Option{
		discovery.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		discovery.WithUserAgent(cfg.UserAgent),
	}
	if cfg.CatalogQuery != "" {
		catalogOpts = append(catalogOpts, discovery.WithQuery(cfg.CatalogQuery))
	}

	catalog := discovery.NewCatalog(cfg.CatalogEndpoint, cfg.FragmentBase, catalogOpts...)
	datasets, err := catalog.Datasets(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info("discovered datasets", "catalog", cfg.CatalogEndpoint, "count", len(datasets))
	return datasets, nil
}

// runBatchProbe analyzes multiple datasets concurrently with a shared
// fragment client.
func runBatchProbe(ctx context.Context, cfg *config.Config, datasets []model.Dataset, logger *slog.Logger) ([]model.DatasetAnalysis, []model.DatasetFailure, error) {
	if cfg.Endpoints != nil && len(cfg.Endpoints.Endpoints) > 0 {
		logger.Warn("batch probing uses default endpoint settings only; per-endpoint overrides (page_size, accept, headers) are ignored",
			"endpointCount", len(cfg.Endpoints.Endpoints))
		fmt.Fprintf(os.Stderr, "Warning: Per-endpoint configurations are ignored in batch mode. Use sequential mode (--batch 1) to apply them.\n\n")
	}

	fmt.Printf("Probing %d datasets (concurrency: %d)...\n", len(datasets), cfg.Concurrency)

	a := newAnalyzer(cfg, config.EndpointConfig{}, logger)
	batch := analyzer.NewBatch(a,
		analyzer.WithConcurrency(cfg.Concurrency),
		analyzer.WithKeepGoing(cfg.KeepGoing),
		analyzer.WithBatchLogger(logger),
	)

	return batch.Run(ctx, datasets)
}

// runSequentialProbe analyzes datasets one at a time, applying
// per-endpoint configuration overrides.
func runSequentialProbe(ctx context.Context, cfg *config.Config, datasets []model.Dataset, logger *slog.Logger) ([]model.DatasetAnalysis, []model.DatasetFailure, error) {
	var analyses []model.DatasetAnalysis
	var failures []model.DatasetFailure

	for _, dataset := range datasets {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		default:
		}

		endpointConfig, _ := cfg.Endpoints.ConfigFor(dataset.Endpoint)
		a := newAnalyzer(cfg, endpointConfig, logger)

		fmt.Printf("Probing %s...\n", dataset.Endpoint)

		analysis, err := a.Analyze(ctx, dataset)
		if err != nil {
			if !cfg.KeepGoing {
				return nil, nil, fmt.Errorf("failed to analyze %s: %w", dataset.Endpoint, err)
			}
			logger.Error("analysis failed", "endpoint", dataset.Endpoint, "error", err)
			failures = append(failures, model.DatasetFailure{
				Endpoint: dataset.Endpoint,
				Error:    err.Error(),
			})
			continue
		}

		analyses = append(analyses, analysis)
	}

	return analyses, failures, nil
}

// newAnalyzer creates an analyzer honoring the endpoint overrides.
func newAnalyzer(cfg *config.Config, endpointConfig config.EndpointConfig, logger *slog.Logger) *analyzer.Analyzer {
	clientOpts := []fragment.Option{
		fragment.WithUserAgent(cfg.UserAgent),
		fragment.WithMaxBodySize(cfg.MaxBodySize),
	}
	if endpointConfig.Accept != "" {
		clientOpts = append(clientOpts, fragment.WithAccept(endpointConfig.Accept))
	}
	if len(endpointConfig.Headers) > 0 {
		clientOpts = append(clientOpts, fragment.WithHeaders(endpointConfig.Headers))
	}

	client := fragment.NewClient(&http.Client{Timeout: cfg.Timeout}, clientOpts...)

	pageSize := cfg.PageSize
	if endpointConfig.PageSize > 0 {
		pageSize = endpointConfig.PageSize
	}

	hostFunc := iri.Host
	if cfg.Rollup {
		hostFunc = iri.RolledUpHost
	}

	return analyzer.New(client, cfg.SamplingRatio,
		analyzer.WithPageSize(pageSize),
		analyzer.WithHostFunc(hostFunc),
		analyzer.WithLogger(logger),
	)
}

// outputReport writes the run report in the requested format.
func outputReport(cfg *config.Config, runReport *model.RunReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output)
	}

	_, err := writer.Write(runReport)
	return err
}

// saveRunReport saves the run report to the database if enabled.
// If db is nil, this function is a no-op.
func saveRunReport(ctx context.Context, db *database.HistoryDB, runReport *model.RunReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveRun(ctx, runReport)
	if err != nil {
		return fmt.Errorf("failed to save run report: %w", err)
	}

	logger.Info("run report saved to database", "id", id)
	return nil
}
