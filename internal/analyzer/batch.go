package analyzer

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lodprobe/lodprobe/internal/model"
)

// Batch analyzes many datasets concurrently.
//
// Design decision: We keep Batch separate from Analyzer because:
//  1. Analyzer stays focused on single-dataset orchestration
//  2. Batch owns the run-level policy (concurrency cap, keep-going)
//  3. Tests can exercise either layer in isolation
type Batch struct {
	// analyzer runs each dataset.
	analyzer *Analyzer

	// concurrency caps the number of datasets analyzed at once. Page
	// fan-out within a dataset is not capped.
	concurrency int

	// keepGoing collects per-dataset failures instead of aborting the
	// run on the first one. Off by default: the default run is
	// all-or-nothing.
	keepGoing bool

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithConcurrency caps concurrent dataset analyses. Default is 10.
func WithConcurrency(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithKeepGoing collects failed datasets and continues instead of
// aborting the whole run on the first failure.
func WithKeepGoing(keepGoing bool) BatchOption {
	return func(b *Batch) {
		b.keepGoing = keepGoing
	}
}

// WithBatchLogger sets a custom logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *Batch) {
		b.logger = logger
	}
}

// NewBatch creates a Batch over the given Analyzer.
func NewBatch(analyzer *Analyzer, opts ...BatchOption) *Batch {
	b := &Batch{
		analyzer:    analyzer,
		concurrency: 10,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// Run analyzes all datasets and returns the completed analyses in
// input order.
//
// By default any dataset failure aborts the run: the first error is
// returned, in-flight sibling analyses are cancelled through the group
// context, and no partial results are surfaced. With keep-going
// enabled, failures are collected and returned alongside the analyses
// that did succeed, and the error result is nil unless the context was
// cancelled.
func (b *Batch) Run(ctx context.Context, datasets []model.Dataset) ([]model.DatasetAnalysis, []model.DatasetFailure, error) {
	b.logger.Info("analyzing datasets",
		"datasets", len(datasets),
		"concurrency", b.concurrency,
	)

	results := make([]*model.DatasetAnalysis, len(datasets))
	var failures []model.DatasetFailure
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, dataset := range datasets {
		g.Go(func() error {
			analysis, err := b.analyzer.Analyze(gctx, dataset)
			if err != nil {
				b.logger.Error("dataset analysis failed",
					"endpoint", dataset.Endpoint,
					"error", err,
				)
				if !b.keepGoing {
					return err
				}
				mu.Lock()
				failures = append(failures, model.DatasetFailure{
					Endpoint: dataset.Endpoint,
					Error:    err.Error(),
				})
				mu.Unlock()
				return nil
			}

			mu.Lock()
			results[i] = &analysis
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	analyses := make([]model.DatasetAnalysis, 0, len(datasets))
	for _, r := range results {
		if r != nil {
			analyses = append(analyses, *r)
		}
	}
	return analyses, failures, nil
}
