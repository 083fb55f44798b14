// Package analyzer orchestrates dataset sampling: it resolves each
// dataset's size, selects pages to sample, fans out one page stream per
// selected page, and aggregates the observed hosts. A batch layer runs
// many dataset analyses concurrently.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/lodprobe/lodprobe/internal/aggregate"
	"github.com/lodprobe/lodprobe/internal/fragment"
	"github.com/lodprobe/lodprobe/internal/iri"
	"github.com/lodprobe/lodprobe/internal/model"
	"github.com/lodprobe/lodprobe/internal/sampler"
)

// Analyzer samples one dataset at a time and produces its host
// occurrence counts.
type Analyzer struct {
	// client fetches and decodes fragment pages.
	client *fragment.Client

	// ratio is the fraction of pages to sample per dataset.
	ratio float64

	// pageSize is the triples-per-page assumed for pagination.
	pageSize int

	// host extracts hostnames from terms. Defaults to iri.Host;
	// iri.RolledUpHost aggregates by registrable domain instead.
	host aggregate.HostFunc

	// logger is used for structured logging.
	logger *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithPageSize overrides the assumed triples per page.
func WithPageSize(size int) Option {
	return func(a *Analyzer) {
		if size > 0 {
			a.pageSize = size
		}
	}
}

// WithHostFunc overrides the host extraction function.
func WithHostFunc(host aggregate.HostFunc) Option {
	return func(a *Analyzer) {
		if host != nil {
			a.host = host
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// New creates an Analyzer sampling at the given ratio.
func New(client *fragment.Client, ratio float64, opts ...Option) *Analyzer {
	a := &Analyzer{
		client:   client,
		ratio:    ratio,
		pageSize: sampler.DefaultPageSize,
		host:     iri.Host,
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}

	return a
}

// Analyze samples one dataset and resolves with its host occurrence
// counts. It fails with the first error observed on any page; sibling
// page fetches are cancelled through the group context rather than
// left running.
func (a *Analyzer) Analyze(ctx context.Context, dataset model.Dataset) (model.DatasetAnalysis, error) {
	size, err := a.resolveSize(ctx, dataset)
	if err != nil {
		return model.DatasetAnalysis{}, fmt.Errorf("dataset %s: %w", dataset.Endpoint, err)
	}
	// The resolved size is authoritative from here on: provenance sums
	// in the merge step use it.
	dataset.DeclaredTriples = size

	pages, err := sampler.Pages(size, a.pageSize, a.ratio)
	if err != nil {
		return model.DatasetAnalysis{}, fmt.Errorf("dataset %s: %w", dataset.Endpoint, err)
	}

	a.logger.Debug("sampling dataset",
		"endpoint", dataset.Endpoint,
		"declared_triples", size,
		"pages", len(pages),
	)

	freq := aggregate.NewFrequency(len(pages), a.host)

	// Pages fan out without a concurrency cap: fragment pages are small
	// and the page count is already bounded by the sampling ratio.
	g, ctx := errgroup.WithContext(ctx)
	for _, page := range pages {
		g.Go(func() error {
			return a.streamPage(ctx, dataset.FragmentURL(page), freq)
		})
	}

	if err := g.Wait(); err != nil {
		return model.DatasetAnalysis{}, fmt.Errorf("dataset %s: %w", dataset.Endpoint, err)
	}

	if !freq.Completed() {
		// Unreachable unless a stream terminated without EOF or error.
		return model.DatasetAnalysis{}, fmt.Errorf("dataset %s: aggregation did not complete", dataset.Endpoint)
	}

	return model.DatasetAnalysis{
		Dataset:         dataset,
		HostOccurrences: freq.Counts(),
	}, nil
}

// streamPage feeds one page's triples and its end-of-stream into the
// aggregator.
func (a *Analyzer) streamPage(ctx context.Context, pageURL string, freq *aggregate.Frequency) error {
	stream, err := a.client.Stream(ctx, pageURL)
	if err != nil {
		freq.Fail(err)
		return err
	}
	defer stream.Close()

	for {
		triple, err := stream.Next()
		if err == io.EOF {
			freq.PageDone()
			return nil
		}
		if err != nil {
			freq.Fail(err)
			return err
		}
		freq.Observe(triple)
	}
}

// resolveSize determines the dataset's triple count. The count the
// endpoint reports about itself wins because it matches the pagination
// the server actually uses; the catalog's count is a fallback for
// endpoints that omit the metadata triple.
func (a *Analyzer) resolveSize(ctx context.Context, dataset model.Dataset) (int64, error) {
	size, err := a.client.DeclaredSize(ctx, dataset.Endpoint)
	switch {
	case err == nil:
		if dataset.DeclaredTriples > 0 && dataset.DeclaredTriples != size {
			a.logger.Warn("catalog and endpoint disagree on triple count",
				"endpoint", dataset.Endpoint,
				"catalog", dataset.DeclaredTriples,
				"endpoint_reported", size,
			)
		}
		return size, nil
	case errors.Is(err, fragment.ErrNoSizeTriple) && dataset.DeclaredTriples > 0:
		a.logger.Debug("endpoint reports no size, using catalog count",
			"endpoint", dataset.Endpoint,
			"catalog", dataset.DeclaredTriples,
		)
		return dataset.DeclaredTriples, nil
	default:
		return 0, err
	}
}
