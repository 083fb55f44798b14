package fragment

import (
	"errors"
	"fmt"
)

// ErrNoSizeTriple is returned by DeclaredSize when the root fragment
// carries no recognized triple-count metadata. Callers fall back to the
// count supplied by discovery.
var ErrNoSizeTriple = errors.New("no triple-count metadata found on root fragment")

// TransportError reports a failed page fetch: a connection failure or a
// non-200 response. It is dataset-scoped; the analyzer fails the whole
// dataset on the first one observed.
type TransportError struct {
	// URL is the page URL that failed.
	URL string

	// Status is the HTTP status code, or 0 for connection failures.
	Status int

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fragment fetch %s: unexpected status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fragment fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError reports a malformed RDF payload on an otherwise successful
// page fetch.
type ParseError struct {
	// URL is the page URL whose payload failed to parse.
	URL string

	// Err is the decoder error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("fragment parse %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ParseError) Unwrap() error {
	return e.Err
}
