package model

import (
	"net/url"
	"strconv"
)

// Dataset describes one candidate dataset discovered in the catalog.
// It is immutable once discovered: the analyzer copies it into results
// rather than mutating it in place.
type Dataset struct {
	// Endpoint is the URL of the dataset's paginated fragment resource.
	// Individual pages are addressed as Endpoint?page=N.
	Endpoint string `json:"endpoint"`

	// SourceURL is the URL of the original source document the dataset
	// was crawled from. It is carried as provenance only; lodprobe never
	// fetches it.
	SourceURL string `json:"sourceUrl"`

	// DeclaredTriples is the triple count reported for this dataset.
	// Discovery seeds it from the catalog; the analyzer replaces it with
	// the count read from the endpoint's own metadata when available.
	DeclaredTriples int64 `json:"declaredTriples"`
}

// FragmentURL returns the URL of the given 1-based page of this dataset.
// Page 1 is the root fragment; the page parameter is appended to any
// query string the endpoint already carries.
func (d Dataset) FragmentURL(page int) string {
	u, err := url.Parse(d.Endpoint)
	if err != nil {
		// Fall back to naive concatenation; the fetch will surface the
		// malformed URL as a transport error.
		return d.Endpoint + "?page=" + strconv.Itoa(page)
	}

	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// Provenance returns the provenance record linking a merged provider
// entry back to this dataset.
func (d Dataset) Provenance() Provenance {
	return Provenance{
		Endpoint:        d.Endpoint,
		SourceURL:       d.SourceURL,
		DeclaredTriples: d.DeclaredTriples,
	}
}

// Provenance links a merged provider entry back to one of the datasets
// that contributed to it.
type Provenance struct {
	Endpoint        string `json:"endpoint"`
	SourceURL       string `json:"sourceUrl"`
	DeclaredTriples int64  `json:"declaredTriples"`
}
