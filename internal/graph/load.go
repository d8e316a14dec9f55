// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graph

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/knakk/rdf"

	"github.com/pdiddy/coldspray-hub/pkg/types"
)

// ErrUnsupportedFormat is returned for dataset formats Load cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// FormatForPath infers the dataset format from a file extension.
func FormatForPath(path string) types.DatasetFormat {
	switch {
	case strings.HasSuffix(path, ".nt"):
		return types.FormatNTriples
	default:
		return types.FormatTurtle
	}
}

// Load decodes an RDF document into a new Graph.
func Load(r io.Reader, format types.DatasetFormat) (*Graph, error) {
	var f rdf.Format
	switch format {
	case types.FormatTurtle, "":
		f = rdf.Turtle
	case types.FormatNTriples:
		f = rdf.NTriples
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	g := New()
	dec := rdf.NewTripleDecoder(r, f)
	for {
		tr, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding triple %d: %w", g.Len()+1, err)
		}
		g.Add(Triple{
			S: fromRDF(tr.Subj),
			P: fromRDF(tr.Pred),
			O: fromRDF(tr.Obj),
		})
	}
	return g, nil
}

func fromRDF(t rdf.Term) Term {
	switch t.Type() {
	case rdf.TermIRI:
		return IRI(t.String())
	case rdf.TermBlank:
		return Blank(strings.TrimPrefix(t.String(), "_:"))
	}
	lit, ok := t.(rdf.Literal)
	if !ok {
		return Literal(t.String())
	}
	if lang := lit.Lang(); lang != "" {
		return LangLiteral(lit.String(), lang)
	}
	return TypedLiteral(lit.String(), lit.DataType.String())
}
