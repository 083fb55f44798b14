// Package aggregate accumulates host occurrence counts for one dataset
// and merges per-dataset results into cross-dataset provider summaries.
package aggregate

import (
	"sync"

	"github.com/lodprobe/lodprobe/internal/model"
)

// HostFunc extracts a hostname from an RDF term. It returns false when
// the term contributes no host. iri.Host and iri.RolledUpHost both
// satisfy it.
type HostFunc func(model.Term) (string, bool)

// Frequency accumulates host occurrence counts for one dataset across
// all of its sampled page streams.
//
// It is a small state machine: it starts with a fixed number of
// outstanding pages, counts hosts from default-graph triples as they
// arrive, and completes when every page has reported end-of-stream.
// Any page error moves it to a terminal failed state.
//
// Page streams run on separate goroutines, so every state mutation is
// guarded by a mutex. Triple arrival order across pages is irrelevant
// to the final counts.
type Frequency struct {
	mu sync.Mutex

	// remaining is the number of pages that have not yet reported
	// end-of-stream.
	remaining int

	// counts maps hostname to occurrence count. Exclusively owned by
	// this aggregator until completion, then handed off via Counts.
	counts map[string]int

	// err is the first page error observed; terminal once set.
	err error

	// host extracts hostnames from terms.
	host HostFunc
}

// NewFrequency creates an aggregator expecting the given number of
// pages, using host to extract hostnames from terms.
func NewFrequency(pages int, host HostFunc) *Frequency {
	return &Frequency{
		remaining: pages,
		counts:    make(map[string]int),
		host:      host,
	}
}

// Observe counts the hosts referenced by one triple. Subject,
// predicate, and object are counted independently: a triple whose
// subject and object share a host contributes 2 to that host. Triples
// in a named graph are control metadata and are discarded. Observe is a
// no-op once the aggregator has failed.
func (f *Frequency) Observe(t model.Triple) {
	if !t.InDefaultGraph() {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return
	}

	for _, term := range t.Terms() {
		if host, ok := f.host(term); ok {
			f.counts[host]++
		}
	}
}

// PageDone records end-of-stream for one page and reports whether the
// aggregation is now complete. It is a no-op after failure.
func (f *Frequency) PageDone() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false
	}

	f.remaining--
	return f.remaining == 0
}

// Fail moves the aggregator to its terminal failed state. Only the
// first error is kept; later errors and completions are ignored.
func (f *Frequency) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err == nil {
		f.err = err
	}
}

// Err returns the first page error observed, or nil.
func (f *Frequency) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Completed reports whether every page has reported end-of-stream
// without a failure.
func (f *Frequency) Completed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err == nil && f.remaining == 0
}

// Counts hands off the accumulated host counts. The returned map is
// the aggregator's own; callers must only take it after completion,
// when no page stream can mutate it anymore.
func (f *Frequency) Counts() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts
}
