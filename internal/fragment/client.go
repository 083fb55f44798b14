// Package fragment fetches pages of paginated triple-fragment
// resources and streams their contents as triples.
//
// A fragment page is an RDF document (TriG by default) whose default
// graph holds dataset triples and whose named graphs hold pagination
// and control metadata. The client performs exactly one HTTP request
// per call, with no retries and no caching.
package fragment

import (
	"context"
	"io"
	"net/http"
	"strconv"

	rdf "github.com/geoknoesis/rdf-go/rdf"

	"github.com/lodprobe/lodprobe/internal/model"
)

// Well-known predicates carrying a dataset's triple count on its root
// fragment. Fragment servers commonly emit one or both.
const (
	// VoidTriples is the VoID vocabulary's triple-count predicate.
	VoidTriples = "http://rdfs.org/ns/void#triples"

	// HydraTotalItems is the Hydra core vocabulary's collection-size
	// predicate.
	HydraTotalItems = "http://www.w3.org/ns/hydra/core#totalItems"
)

// DefaultAccept is the Accept header requested from fragment servers.
// TriG keeps control metadata in named graphs, which lets the stream
// separate data triples from pagination triples.
const DefaultAccept = "application/trig"

// DefaultMaxBodySize limits how much of a page body is read. Fragment
// pages hold on the order of a hundred triples; 10MB is far above any
// well-behaved page and protects against runaway responses.
const DefaultMaxBodySize = 10 * 1024 * 1024

// Client fetches fragment pages over HTTP and decodes them into
// triples.
//
// Design decision: We require an external *http.Client rather than
// building one because:
//  1. Timeouts and transport settings are owned by the caller's config
//  2. Tests can inject httptest clients
//  3. One client is shared across all concurrent page fetches
type Client struct {
	// httpClient performs the requests.
	httpClient *http.Client

	// accept is the Accept header value sent with each request.
	accept string

	// userAgent is the User-Agent header sent with each request.
	userAgent string

	// headers holds extra headers sent with each request, typically
	// from per-endpoint configuration.
	headers map[string]string

	// maxBodySize limits the bytes read from one page response.
	maxBodySize int64
}

// Option configures a Client.
type Option func(*Client)

// WithAccept sets the Accept header requested from fragment servers.
func WithAccept(accept string) Option {
	return func(c *Client) {
		if accept != "" {
			c.accept = accept
		}
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHeaders sets extra headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithMaxBodySize limits the response bytes read per page.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// NewClient creates a fragment client using the given HTTP client.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	c := &Client{
		httpClient:  httpClient,
		accept:      DefaultAccept,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Stream opens one fragment page and returns a stream of its triples.
// The caller must Close the stream. Connection failures and non-200
// statuses are reported as *TransportError before any triple is
// produced; malformed payloads surface as *ParseError from Next.
func (c *Client) Stream(ctx context.Context, pageURL string) (*Stream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &TransportError{URL: pageURL, Err: err}
	}

	req.Header.Set("Accept", c.accept)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: pageURL, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &TransportError{URL: pageURL, Status: resp.StatusCode}
	}

	body := io.LimitReader(resp.Body, c.maxBodySize)
	dec, err := rdf.NewReader(body, rdf.FormatTriG)
	if err != nil {
		_ = resp.Body.Close()
		return nil, &ParseError{URL: pageURL, Err: err}
	}

	return &Stream{
		url:  pageURL,
		body: resp.Body,
		dec:  dec,
	}, nil
}

// DeclaredSize fetches the root fragment of the given endpoint and
// scans it for the well-known triple-count metadata: a triple whose
// subject is the endpoint itself and whose predicate is void:triples or
// hydra:totalItems. The metadata may live in a named graph, so the scan
// considers all graphs.
//
// Returns ErrNoSizeTriple when the root fragment carries no such
// triple, and a wrapped strconv error when the count literal does not
// parse as an integer.
func (c *Client) DeclaredSize(ctx context.Context, endpoint string) (int64, error) {
	st, err := c.Stream(ctx, endpoint)
	if err != nil {
		return 0, err
	}
	defer st.Close()

	for {
		t, err := st.Next()
		if err == io.EOF {
			return 0, ErrNoSizeTriple
		}
		if err != nil {
			return 0, err
		}

		if t.Subject.Kind != model.TermIRI || t.Subject.Value != endpoint {
			continue
		}
		if t.Predicate.Value != VoidTriples && t.Predicate.Value != HydraTotalItems {
			continue
		}
		if t.Object.Kind != model.TermLiteral {
			continue
		}

		n, err := strconv.ParseInt(t.Object.Value, 10, 64)
		if err != nil {
			return 0, &ParseError{URL: endpoint, Err: err}
		}
		return n, nil
	}
}

// Stream is a lazy, ordered sequence of triples read from one fragment
// page. It is finite: Next eventually returns io.EOF on success, even
// for pages with zero triples, so callers counting outstanding pages
// always reach zero.
type Stream struct {
	url  string
	body io.ReadCloser
	dec  rdf.Reader
}

// Next returns the next triple from the page. It returns io.EOF when
// the page is exhausted and *ParseError when the payload is malformed.
// After a non-nil error the stream must not be used again.
func (s *Stream) Next() (model.Triple, error) {
	q, err := s.dec.Next()
	if err == io.EOF {
		return model.Triple{}, io.EOF
	}
	if err != nil {
		return model.Triple{}, &ParseError{URL: s.url, Err: err}
	}
	return toTriple(q), nil
}

// Close releases the response body and decoder.
func (s *Stream) Close() error {
	if s.dec != nil {
		_ = s.dec.Close()
	}
	return s.body.Close()
}
