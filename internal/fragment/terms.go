package fragment

import (
	rdf "github.com/geoknoesis/rdf-go/rdf"

	"github.com/lodprobe/lodprobe/internal/model"
)

// toTriple converts one decoded statement into the internal triple
// model. Statements in the default graph map to Graph == ""; statements
// in a named graph carry the graph IRI, which marks them as fragment
// control metadata.
//
// All knowledge of the rdf-go term representation lives in this file so
// that a decoder upgrade touches exactly one place.
func toTriple(q rdf.Statement) model.Triple {
	t := model.Triple{
		Subject:   toTerm(q.S),
		Predicate: toTerm(q.P),
		Object:    toTerm(q.O),
	}
	if q.G != nil {
		t.Graph = termValue(q.G)
	}
	return t
}

// toTerm converts one rdf-go term into the internal term model.
// Quoted triples (RDF-star) and any future term kinds are folded into
// blank nodes: they carry no hostname and must not abort the stream.
func toTerm(t rdf.Term) model.Term {
	if t == nil {
		return model.Term{Kind: model.TermBlank}
	}
	switch t.Kind() {
	case rdf.TermIRI:
		return model.Term{Kind: model.TermIRI, Value: termValue(t)}
	case rdf.TermLiteral:
		return model.Term{Kind: model.TermLiteral, Value: termValue(t)}
	case rdf.TermBlankNode:
		return model.Term{Kind: model.TermBlank, Value: termValue(t)}
	default:
		return model.Term{Kind: model.TermBlank, Value: termValue(t)}
	}
}

// termValue extracts the bare value of an rdf-go term: the IRI string,
// the literal's lexical form, or the blank node identifier, without any
// serialization syntax such as quotes or the "_:" prefix.
func termValue(t rdf.Term) string {
	switch v := t.(type) {
	case rdf.IRI:
		return v.Value
	case rdf.Literal:
		return v.Lexical
	case rdf.BlankNode:
		return v.ID
	default:
		return t.String()
	}
}
