// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph holds an immutable in-memory RDF triple store.
// Triples keep their insertion order so every scan is deterministic.
package graph

import (
	"fmt"
	"iter"
	"strings"
)

// Kind classifies an RDF term.
type Kind uint8

const (
	KindIRI Kind = iota + 1
	KindBlank
	KindLiteral
)

// XSD datatype IRIs recognised by the store.
const (
	XSD        = "http://www.w3.org/2001/XMLSchema#"
	XSDString  = XSD + "string"
	XSDInteger = XSD + "integer"
	XSDDecimal = XSD + "decimal"
	XSDDouble  = XSD + "double"
	XSDFloat   = XSD + "float"
	XSDBoolean = XSD + "boolean"
	RDFType    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	RDFLang    = "http://www.w3.org/1999/02/22-rdf-syntax-ns#langString"
)

// Term is a comparable RDF term. For literals, Datatype is empty for plain
// strings and Lang is set only for language-tagged strings.
type Term struct {
	Kind     Kind
	Value    string
	Lang     string
	Datatype string
}

// IRI returns an IRI term.
func IRI(v string) Term { return Term{Kind: KindIRI, Value: v} }

// Blank returns a blank node term.
func Blank(id string) Term { return Term{Kind: KindBlank, Value: id} }

// Literal returns a plain string literal.
func Literal(v string) Term { return Term{Kind: KindLiteral, Value: v} }

// TypedLiteral returns a literal with a datatype IRI. xsd:string is
// normalised to a plain literal.
func TypedLiteral(v, datatype string) Term {
	if datatype == XSDString {
		datatype = ""
	}
	return Term{Kind: KindLiteral, Value: v, Datatype: datatype}
}

// LangLiteral returns a language-tagged literal.
func LangLiteral(v, lang string) Term {
	return Term{Kind: KindLiteral, Value: v, Lang: strings.ToLower(lang)}
}

func (t Term) IsIRI() bool     { return t.Kind == KindIRI }
func (t Term) IsBlank() bool   { return t.Kind == KindBlank }
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// IsZero reports whether t is the zero Term (an unbound value).
func (t Term) IsZero() bool { return t.Kind == 0 }

// IsNumeric reports whether t is a literal with a numeric XSD datatype.
func (t Term) IsNumeric() bool {
	if t.Kind != KindLiteral {
		return false
	}
	switch t.Datatype {
	case XSDInteger, XSDDecimal, XSDDouble, XSDFloat:
		return true
	}
	return strings.HasPrefix(t.Datatype, XSD) && isIntegerSubtype(t.Datatype[len(XSD):])
}

func isIntegerSubtype(local string) bool {
	switch local {
	case "int", "long", "short", "byte", "nonNegativeInteger", "positiveInteger",
		"nonPositiveInteger", "negativeInteger", "unsignedInt", "unsignedLong",
		"unsignedShort", "unsignedByte", "gYear":
		return true
	}
	return false
}

// String returns the lexical form: the IRI, the blank node label, or the
// literal value without quotes or tags.
func (t Term) String() string {
	return t.Value
}

// NTriples returns the term in N-Triples syntax.
func (t Term) NTriples() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindLiteral:
		v := `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`).Replace(t.Value) + `"`
		if t.Lang != "" {
			return v + "@" + t.Lang
		}
		if t.Datatype != "" {
			return v + "^^<" + t.Datatype + ">"
		}
		return v
	}
	return ""
}

// Triple is a subject-predicate-object statement.
type Triple struct {
	S, P, O Term
}

func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.S.NTriples(), t.P.NTriples(), t.O.NTriples())
}

// Graph is a set of triples indexed by subject, predicate, and object.
// A Graph must not be modified once it is shared between readers.
type Graph struct {
	triples []Triple
	seen    map[Triple]struct{}
	bySP    map[Term]map[Term][]int
	byPO    map[Term]map[Term][]int
	byO     map[Term][]int
	byP     map[Term][]int
	byS     map[Term][]int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		seen: make(map[Triple]struct{}),
		bySP: make(map[Term]map[Term][]int),
		byPO: make(map[Term]map[Term][]int),
		byO:  make(map[Term][]int),
		byP:  make(map[Term][]int),
		byS:  make(map[Term][]int),
	}
}

// Add inserts t unless it is already present. It reports whether the
// triple was new.
func (g *Graph) Add(t Triple) bool {
	if _, ok := g.seen[t]; ok {
		return false
	}
	g.seen[t] = struct{}{}
	i := len(g.triples)
	g.triples = append(g.triples, t)

	if g.bySP[t.S] == nil {
		g.bySP[t.S] = make(map[Term][]int)
	}
	g.bySP[t.S][t.P] = append(g.bySP[t.S][t.P], i)
	if g.byPO[t.P] == nil {
		g.byPO[t.P] = make(map[Term][]int)
	}
	g.byPO[t.P][t.O] = append(g.byPO[t.P][t.O], i)
	g.byO[t.O] = append(g.byO[t.O], i)
	g.byP[t.P] = append(g.byP[t.P], i)
	g.byS[t.S] = append(g.byS[t.S], i)
	return true
}

// Len returns the number of triples.
func (g *Graph) Len() int { return len(g.triples) }

// Has reports whether the exact triple is present.
func (g *Graph) Has(t Triple) bool {
	_, ok := g.seen[t]
	return ok
}

// Match returns the triples matching the pattern in insertion order. A nil
// argument is a wildcard.
func (g *Graph) Match(s, p, o *Term) iter.Seq[Triple] {
	candidates, all := g.candidates(s, p, o)
	return func(yield func(Triple) bool) {
		if all {
			for _, t := range g.triples {
				if !yield(t) {
					return
				}
			}
			return
		}
		for _, i := range candidates {
			t := g.triples[i]
			if s != nil && t.S != *s {
				continue
			}
			if p != nil && t.P != *p {
				continue
			}
			if o != nil && t.O != *o {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// candidates picks the narrowest index for the bound positions. all is
// true when nothing is bound and the whole graph must be scanned.
func (g *Graph) candidates(s, p, o *Term) (idx []int, all bool) {
	switch {
	case s != nil && p != nil:
		return g.bySP[*s][*p], false
	case p != nil && o != nil:
		return g.byPO[*p][*o], false
	case s != nil:
		return g.byS[*s], false
	case o != nil:
		return g.byO[*o], false
	case p != nil:
		return g.byP[*p], false
	default:
		return nil, true
	}
}

// Objects returns the objects of (s, p, ?) in insertion order.
func (g *Graph) Objects(s, p Term) []Term {
	var out []Term
	for t := range g.Match(&s, &p, nil) {
		out = append(out, t.O)
	}
	return out
}

// Object returns the first object of (s, p, ?), or false when there is none.
func (g *Graph) Object(s, p Term) (Term, bool) {
	for t := range g.Match(&s, &p, nil) {
		return t.O, true
	}
	return Term{}, false
}

// Subjects returns the subjects of (?, p, o) in insertion order.
func (g *Graph) Subjects(p, o Term) []Term {
	var out []Term
	for t := range g.Match(nil, &p, &o) {
		out = append(out, t.S)
	}
	return out
}
