// Package discovery queries a metadata catalog for candidate datasets.
//
// The catalog is an external collaborator: lodprobe only requires that
// a SPARQL SELECT against it yields, per dataset, an identifier, the
// source document URL, and a declared triple count. The result is an
// ordered sequence of Dataset records; everything after this boundary
// is independent of the query mechanism.
package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/lodprobe/lodprobe/internal/model"
)

// ErrDiscovery wraps all catalog failures: unreachable endpoint,
// non-200 status, or a malformed result document.
var ErrDiscovery = errors.New("catalog discovery failed")

// DefaultQuery selects candidate datasets from a VoID-described
// catalog: documents with a known triple count and a source URL.
const DefaultQuery = `PREFIX void: <http://rdfs.org/ns/void#>
PREFIX dcat: <http://www.w3.org/ns/dcat#>
SELECT ?id ?source ?triples WHERE {
	?id void:triples ?triples ;
	    dcat:downloadURL ?source .
	FILTER(?triples > 0)
}`

// Catalog queries one metadata catalog endpoint for datasets.
type Catalog struct {
	// endpoint is the SPARQL query endpoint URL.
	endpoint string

	// fragmentBase is the base URL under which each dataset's fragment
	// resource lives; the dataset identifier's last path segment is
	// appended to it.
	fragmentBase string

	// httpClient performs the query request.
	httpClient *http.Client

	// query is the SELECT query sent to the endpoint.
	query string

	// userAgent is the User-Agent header sent with the query.
	userAgent string
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithQuery overrides the SELECT query. The query must bind ?id,
// ?source, and ?triples.
func WithQuery(query string) Option {
	return func(c *Catalog) {
		if query != "" {
			c.query = query
		}
	}
}

// WithHTTPClient sets the HTTP client used for the query.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Catalog) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Catalog) {
		c.userAgent = ua
	}
}

// NewCatalog creates a Catalog for the given SPARQL endpoint.
// Fragment endpoints for discovered datasets are derived from
// fragmentBase; when fragmentBase is empty the dataset identifier
// itself is used as the fragment endpoint.
func NewCatalog(endpoint, fragmentBase string, opts ...Option) *Catalog {
	c := &Catalog{
		endpoint:     endpoint,
		fragmentBase: strings.TrimSuffix(fragmentBase, "/"),
		httpClient:   http.DefaultClient,
		query:        DefaultQuery,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// sparqlResults is the application/sparql-results+json envelope.
type sparqlResults struct {
	Results struct {
		Bindings []map[string]sparqlValue `json:"bindings"`
	} `json:"results"`
}

// sparqlValue is one bound value in a result row.
type sparqlValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Datasets runs the catalog query and returns the candidate datasets
// in result order.
func (c *Catalog) Datasets(ctx context.Context) ([]model.Dataset, error) {
	queryURL := c.endpoint + "?query=" + url.QueryEscape(c.query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiscovery, err)
	}
	req.Header.Set("Accept", "application/sparql-results+json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiscovery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", ErrDiscovery, resp.StatusCode, c.endpoint)
	}

	var results sparqlResults
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: malformed result document: %v", ErrDiscovery, err)
	}

	datasets := make([]model.Dataset, 0, len(results.Results.Bindings))
	for i, row := range results.Results.Bindings {
		ds, err := c.toDataset(row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrDiscovery, i, err)
		}
		datasets = append(datasets, ds)
	}
	return datasets, nil
}

// toDataset converts one result row into a Dataset record.
func (c *Catalog) toDataset(row map[string]sparqlValue) (model.Dataset, error) {
	id, ok := row["id"]
	if !ok || id.Value == "" {
		return model.Dataset{}, errors.New("missing ?id binding")
	}
	source, ok := row["source"]
	if !ok {
		return model.Dataset{}, errors.New("missing ?source binding")
	}
	triples, ok := row["triples"]
	if !ok {
		return model.Dataset{}, errors.New("missing ?triples binding")
	}

	count, err := strconv.ParseInt(triples.Value, 10, 64)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("unparsable triple count %q", triples.Value)
	}

	return model.Dataset{
		Endpoint:        c.fragmentEndpoint(id.Value),
		SourceURL:       source.Value,
		DeclaredTriples: count,
	}, nil
}

// fragmentEndpoint derives the fragment endpoint for a dataset id.
// Catalogs identify datasets by IRI; the fragment server exposes each
// dataset under fragmentBase/<last path segment of the id>.
func (c *Catalog) fragmentEndpoint(id string) string {
	if c.fragmentBase == "" {
		return id
	}
	segment := id
	if idx := strings.LastIndex(strings.TrimSuffix(id, "/"), "/"); idx >= 0 {
		segment = strings.TrimSuffix(id, "/")[idx+1:]
	}
	return c.fragmentBase + "/" + segment
}
