// Package sampler computes which pages of a paginated fragment
// resource to fetch for a given declared size and sampling ratio.
//
// The selection spreads the sampled pages evenly across the full page
// range, approximating uniform coverage of the dataset without fetching
// it in full.
package sampler

import (
	"errors"
	"math"
)

// DefaultPageSize is the number of triples per page assumed for
// paginated fragment resources unless the endpoint declares otherwise.
const DefaultPageSize = 100

// Sampling validation errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances at each call site. This allows callers
// to use errors.Is() for programmatic handling while still providing
// human-readable messages.
var (
	// ErrInvalidSize is returned when the declared triple count is not
	// positive. A dataset with no triples has no pages to sample.
	ErrInvalidSize = errors.New("invalid dataset size: declared triple count must be positive")

	// ErrInvalidPageSize is returned when the page size is not positive.
	ErrInvalidPageSize = errors.New("invalid page size: must be positive")

	// ErrInvalidRatio is returned when the sampling ratio is outside
	// (0, 1]. A ratio of 0 would sample nothing; above 1 would request
	// more pages than exist.
	ErrInvalidRatio = errors.New("invalid sampling ratio: must be in (0, 1]")
)

// Pages returns the ordered, 1-based page indices to sample from a
// dataset with declaredTriples triples served pageSize triples per
// page, at the given sampling ratio.
//
// The number of pages sampled is ceil(declaredTriples*ratio/pageSize),
// clamped to [1, maxPage] where maxPage = ceil(declaredTriples/pageSize).
// Indices are spread evenly across [1, maxPage] at a real-valued
// interval of maxPage/pagesToSample and floored to integers.
//
// Flooring is a deliberate choice: the even-spread formula produces
// fractional positions, and a page selector needs an integer. Because
// the interval is always >= 1, floored indices are strictly increasing,
// so the result never contains duplicates and always stays within
// [1, maxPage].
func Pages(declaredTriples int64, pageSize int, ratio float64) ([]int, error) {
	if declaredTriples <= 0 {
		return nil, ErrInvalidSize
	}
	if pageSize <= 0 {
		return nil, ErrInvalidPageSize
	}
	if ratio <= 0 || ratio > 1 {
		return nil, ErrInvalidRatio
	}

	maxPage := int((declaredTriples + int64(pageSize) - 1) / int64(pageSize))

	pagesToSample := int(math.Ceil(float64(declaredTriples) * ratio / float64(pageSize)))
	if pagesToSample < 1 {
		pagesToSample = 1
	}
	if pagesToSample > maxPage {
		pagesToSample = maxPage
	}

	interval := float64(maxPage) / float64(pagesToSample)

	pages := make([]int, 0, pagesToSample)
	for i := 0; i < pagesToSample; i++ {
		pages = append(pages, int(math.Floor(1+float64(i)*interval)))
	}
	return pages, nil
}
