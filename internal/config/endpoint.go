package config

// File is the parsed configuration file. It holds per-endpoint
// overrides keyed by fragment endpoint URL.
type File struct {
	// Endpoints maps a fragment endpoint URL to its overrides.
	Endpoints map[string]EndpointConfig `yaml:"endpoints"`
}

// EndpointConfig holds overrides for one fragment endpoint.
// Zero values mean "no override".
type EndpointConfig struct {
	// PageSize overrides the assumed triples per page for this
	// endpoint.
	PageSize int `yaml:"page_size"`

	// Accept overrides the Accept header requested from this endpoint,
	// for servers that do not serve TriG.
	Accept string `yaml:"accept"`

	// Headers are extra HTTP headers sent to this endpoint, e.g. an
	// API key header for a catalog behind one.
	Headers map[string]string `yaml:"headers"`
}

// ConfigFor returns the overrides for the given endpoint, if any.
func (f *File) ConfigFor(endpoint string) (EndpointConfig, bool) {
	if f == nil {
		return EndpointConfig{}, false
	}
	ec, ok := f.Endpoints[endpoint]
	return ec, ok
}
