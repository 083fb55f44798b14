package model

// TermKind classifies an RDF term.
type TermKind int

// RDF term kinds.
const (
	// TermIRI is an internationalized resource identifier. Only IRI
	// terms contribute hostnames to the frequency counts.
	TermIRI TermKind = iota

	// TermLiteral is a literal value such as a string or number.
	TermLiteral

	// TermBlank is a blank node, scoped to the document it appears in.
	TermBlank
)

// String returns a human-readable name for the term kind.
func (k TermKind) String() string {
	switch k {
	case TermIRI:
		return "iri"
	case TermLiteral:
		return "literal"
	case TermBlank:
		return "blank"
	default:
		return "unknown"
	}
}

// Term is one RDF term: an IRI, a literal, or a blank node.
// Value holds the IRI string, the literal's lexical form, or the blank
// node label, depending on Kind.
type Term struct {
	Kind  TermKind
	Value string
}

// Triple is one RDF statement streamed from a fragment page.
// Graph is empty for triples in the default (data) graph. A non-empty
// graph marks pagination and control metadata emitted by the fragment
// server, which is excluded from host counting.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     string
}

// InDefaultGraph reports whether the triple belongs to the default
// (data) graph.
func (t Triple) InDefaultGraph() bool {
	return t.Graph == ""
}

// Terms returns the subject, predicate, and object in positional order.
// Each position is counted independently during host aggregation.
func (t Triple) Terms() [3]Term {
	return [3]Term{t.Subject, t.Predicate, t.Object}
}
