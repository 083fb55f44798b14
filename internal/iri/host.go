// Package iri extracts and normalizes hostnames from RDF IRI terms.
//
// Host extraction is a filtering predicate: terms that are not IRIs,
// IRIs that fail to parse, and IRIs without an authority component all
// contribute no host. Nothing in this package returns an error.
package iri

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/text/unicode/norm"

	"github.com/lodprobe/lodprobe/internal/model"
)

// Host returns the normalized hostname referenced by the given term.
// The second return value is false when the term is not an IRI or when
// no hostname can be derived from it.
//
// Normalization: the IRI is NFC-normalized before parsing so that
// equivalent internationalized IRIs map to one host, the hostname is
// lowercased, and internationalized hostnames are IDNA-mapped to their
// ASCII (punycode) form.
func Host(term model.Term) (string, bool) {
	if term.Kind != model.TermIRI {
		return "", false
	}

	u, err := url.Parse(norm.NFC.String(term.Value))
	if err != nil {
		return "", false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", false
	}

	// Best effort: hosts that IDNA rejects (e.g. raw IP literals already
	// handled by Hostname, or invalid labels) keep their lowercased form.
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		ascii = strings.ToLower(ascii)
		if ascii != "" {
			host = ascii
		}
	}

	return host, true
}

// RegistrableDomain rolls a hostname up to its registrable domain
// (pay-level domain) using the public suffix list: "data.example.co.uk"
// becomes "example.co.uk". Hosts without a registrable domain, such as
// IP addresses or bare TLDs, are returned unchanged.
func RegistrableDomain(host string) string {
	// The public suffix list is defined for domain names only; IP
	// literals would be split on dots like any other label sequence.
	if net.ParseIP(host) != nil {
		return host
	}

	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// RolledUpHost composes Host and RegistrableDomain: it extracts the
// hostname from an IRI term and rolls it up to its registrable domain.
// It satisfies the same contract as Host and can replace it wherever a
// host function is injected.
func RolledUpHost(term model.Term) (string, bool) {
	host, ok := Host(term)
	if !ok {
		return "", false
	}
	return RegistrableDomain(host), true
}
