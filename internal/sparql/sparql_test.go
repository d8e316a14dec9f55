// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sparql

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/coldspray-hub/internal/graph"
	"github.com/pdiddy/coldspray-hub/pkg/types"
)

const fixture = `@prefix cs: <http://www.semanticweb.org/coldspray#> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .

cs:p1 a cs:ColdSprayPaper ;
    cs:hasDOI "10.1000/one" ;
    cs:hasMetadata cs:m1 ;
    cs:hasMaterial cs:mat1 .
cs:m1 a cs:Metadata ;
    cs:hasTitle "Aluminium deposits" ;
    cs:hasPublicationYear "2019"^^xsd:integer ;
    cs:hasAuthor "Ada Lovelace", "Alan Turing" .
cs:mat1 cs:hasComposition "Al-6061" ; cs:hasCondition "as-received" .

cs:p2 a cs:ColdSprayPaper ;
    cs:hasDOI "10.1000/two" ;
    cs:hasMetadata cs:m2 ;
    cs:hasMaterial cs:mat2 .
cs:m2 a cs:Metadata ;
    cs:hasTitle "Copper deposits" ;
    cs:hasPublicationYear "2021"^^xsd:integer ;
    cs:hasAuthor "Grace Hopper" .
cs:mat2 cs:hasComposition "Cu-OFHC" ; cs:hasCondition "annealed" .

cs:p3 a cs:ColdSprayPaper ;
    cs:hasDOI "10.1000/three" ;
    cs:hasMetadata cs:m3 .
cs:m3 a cs:Metadata ;
    cs:hasTitle "Nozzle design" ;
    cs:hasPublicationYear "2020"^^xsd:integer .
`

func testEngine(t *testing.T) *Engine {
	t.Helper()
	g, err := graph.Load(strings.NewReader(fixture), types.FormatTurtle)
	require.NoError(t, err)
	return NewEngine(g, WithPrefix("cs", types.DefaultNamespace))
}

func run(t *testing.T, e *Engine, q string) *Table {
	t.Helper()
	tbl, err := e.Query(context.Background(), q)
	require.NoError(t, err)
	return tbl
}

func column(tbl *Table, name string) []string {
	i := tbl.Column(name)
	out := make([]string, 0, len(tbl.Rows))
	for _, r := range tbl.Rows {
		out = append(out, r[i])
	}
	return out
}

func TestSelectOrderByDesc(t *testing.T) {
	e := testEngine(t)
	tbl := run(t, e, `
SELECT DISTINCT ?Year ?DOI ?Title
WHERE {
    ?paper a cs:ColdSprayPaper ;
         cs:hasDOI ?nDOI ;
         cs:hasMetadata ?metadata .
         BIND(CONCAT("https://doi.org/", STR(?nDOI)) AS ?DOI) .
  ?metadata a cs:Metadata ;
            cs:hasTitle ?Title ;
            cs:hasPublicationYear ?Year .
}
ORDER BY DESC(?Year)`)

	assert.Equal(t, []string{"Year", "DOI", "Title"}, tbl.Columns)
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, []string{"2021", "2020", "2019"}, column(tbl, "Year"))
	assert.Equal(t, "https://doi.org/10.1000/two", tbl.Rows[0][1])
}

func TestFilterRegex(t *testing.T) {
	e := testEngine(t)
	tbl := run(t, e, `
SELECT ?DOI ?Composition ?Material_Condition WHERE {
    ?paper cs:hasDOI ?DOI .
    ?paper a cs:ColdSprayPaper ;
         cs:hasMaterial ?material .
    ?material cs:hasCondition ?Material_Condition ;
                cs:hasComposition ?Composition .
    FILTER (regex(?Composition, "Al|Aluminum|aluminum"))
}`)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, []string{"10.1000/one", "Al-6061", "as-received"}, tbl.Rows[0])
}

func TestFilterAppliesToWholeGroup(t *testing.T) {
	e := testEngine(t)
	// The FILTER precedes the pattern that binds its variable.
	tbl := run(t, e, `
SELECT ?c WHERE {
    FILTER (regex(?c, "^Cu"))
    ?m cs:hasComposition ?c .
}`)
	assert.Equal(t, [][]string{{"Cu-OFHC"}}, tbl.Rows)
}

func TestCaseInsensitiveRegex(t *testing.T) {
	e := testEngine(t)
	tbl := run(t, e, `SELECT ?a WHERE { ?m cs:hasAuthor ?a . FILTER(regex(?a, "ada", "i")) }`)
	assert.Equal(t, [][]string{{"Ada Lovelace"}}, tbl.Rows)
}

func TestOptionalLeavesUnbound(t *testing.T) {
	e := testEngine(t)
	tbl := run(t, e, `
SELECT ?doi ?Composition WHERE {
    ?paper cs:hasDOI ?doi .
    Optional { ?paper cs:hasMaterial ?mat . ?mat cs:hasComposition ?Composition . }
}
ORDER BY ?doi`)
	assert.Equal(t, [][]string{
		{"10.1000/one", "Al-6061"},
		{"10.1000/three", ""},
		{"10.1000/two", "Cu-OFHC"},
	}, tbl.Rows)
}

func TestOptionalFilterSeesOuterBindings(t *testing.T) {
	e := testEngine(t)
	tbl := run(t, e, `
SELECT ?doi ?c WHERE {
    ?paper cs:hasDOI ?doi ; cs:hasMaterial ?mat .
    OPTIONAL { ?mat cs:hasComposition ?c . FILTER(STRSTARTS(?c, "Al")) }
}
ORDER BY ?doi`)
	assert.Equal(t, [][]string{{"10.1000/one", "Al-6061"}, {"10.1000/two", ""}}, tbl.Rows)
}

func TestBindIfBound(t *testing.T) {
	e := testEngine(t)
	tbl := run(t, e, `
SELECT ?doi ?label WHERE {
    ?paper cs:hasDOI ?doi .
    OPTIONAL { ?paper cs:hasMaterial ?mat . ?mat cs:hasComposition ?c }
    BIND(IF(BOUND(?c), CONCAT("Material: ", ?c), "") AS ?label)
}
ORDER BY ?doi`)
	assert.Equal(t, []string{"Material: Al-6061", "", "Material: Cu-OFHC"}, column(tbl, "label"))
}

func TestBindErrorLeavesUnbound(t *testing.T) {
	e := testEngine(t)
	tbl := run(t, e, `
SELECT ?doi ?x WHERE {
    ?paper cs:hasDOI ?doi .
    OPTIONAL { ?paper cs:hasMaterial ?mat . ?mat cs:hasComposition ?c }
    BIND(CONCAT("x", STR(?c)) AS ?x)
}
ORDER BY ?doi`)
	assert.Equal(t, []string{"xAl-6061", "", "xCu-OFHC"}, column(tbl, "x"))
}

func TestBindDoesNotOverwrite(t *testing.T) {
	e := testEngine(t)
	tbl := run(t, e, `
SELECT ?v WHERE {
    cs:mat1 cs:hasComposition ?c .
    BIND("first" AS ?v)
    BIND("second" AS ?v)
}`)
	assert.Equal(t, [][]string{{"first"}}, tbl.Rows)
}

func TestCoalesce(t *testing.T) {
	e := testEngine(t)
	tbl := run(t, e, `
SELECT ?v WHERE {
    cs:p3 cs:hasDOI ?doi .
    OPTIONAL { cs:p3 cs:hasMaterial ?m }
    BIND(COALESCE(CONCAT("m: ", STR(?m)), "NA") AS ?v)
}`)
	assert.Equal(t, [][]string{{"NA"}}, tbl.Rows)
}

func TestDistinctKeepsFirst(t *testing.T) {
	e := testEngine(t)
	tbl := run(t, e, `SELECT DISTINCT ?paper WHERE { ?paper cs:hasMetadata ?m . ?m cs:hasAuthor ?a }`)
	assert.Len(t, tbl.Rows, 2)

	all := run(t, e, `SELECT ?paper WHERE { ?paper cs:hasMetadata ?m . ?m cs:hasAuthor ?a }`)
	assert.Len(t, all.Rows, 3)
}

func TestUnion(t *testing.T) {
	e := testEngine(t)
	tbl := run(t, e, `
SELECT ?v WHERE {
    { cs:mat1 cs:hasComposition ?v } UNION { cs:mat2 cs:hasComposition ?v }
}`)
	assert.Equal(t, [][]string{{"Al-6061"}, {"Cu-OFHC"}}, tbl.Rows)
}

func TestLimitOffset(t *testing.T) {
	e := testEngine(t)
	tbl := run(t, e, `SELECT ?y WHERE { ?m cs:hasPublicationYear ?y } ORDER BY ASC(?y) LIMIT 1 OFFSET 1`)
	assert.Equal(t, [][]string{{"2020"}}, tbl.Rows)
}

func TestSelectStar(t *testing.T) {
	e := testEngine(t)
	tbl := run(t, e, `SELECT * WHERE { cs:mat1 ?p ?o }`)
	assert.Equal(t, []string{"p", "o"}, tbl.Columns)
	assert.Len(t, tbl.Rows, 2)
}

func TestZeroRowsIsNotAnError(t *testing.T) {
	e := testEngine(t)
	tbl := run(t, e, `SELECT ?x WHERE { ?x cs:noSuchProperty ?y }`)
	assert.Equal(t, []string{"x"}, tbl.Columns)
	assert.Empty(t, tbl.Rows)
}

func TestNumericComparison(t *testing.T) {
	e := testEngine(t)
	tbl := run(t, e, `SELECT ?y WHERE { ?m cs:hasPublicationYear ?y . FILTER(?y >= 2020 && ?y < 2021 + 1) } ORDER BY ?y`)
	assert.Equal(t, [][]string{{"2020"}, {"2021"}}, tbl.Rows)
}

func TestSyntaxErrors(t *testing.T) {
	e := testEngine(t)
	tests := []struct {
		name  string
		query string
	}{
		{"unterminated string", `SELECT ?x WHERE { ?x cs:p "abc }`},
		{"missing brace", `SELECT ?x WHERE { ?x cs:p ?y `},
		{"undefined prefix", `SELECT ?x WHERE { ?x zz:p ?y }`},
		{"unknown function", `SELECT ?x WHERE { ?x cs:p ?y FILTER(FOO(?y)) }`},
		{"no projection", `SELECT WHERE { ?x cs:p ?y }`},
		{"broken keyword", `SELECT ?x WHERE { ?x cs:p ?y FILTER(regex(?y, "a"")) }`},
		{"trailing garbage", `SELECT ?x WHERE { ?x cs:p ?y } garbage`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Query(context.Background(), tt.query)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSyntax)
			var perr *Error
			require.True(t, errors.As(err, &perr))
			assert.Positive(t, perr.Line)
		})
	}
}

func TestInvalidRegexAbortsQuery(t *testing.T) {
	e := testEngine(t)
	_, err := e.Query(context.Background(), `SELECT ?c WHERE { ?m cs:hasComposition ?c FILTER(regex(?c, "(")) }`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEvaluation)
}

func TestErrorPosition(t *testing.T) {
	_, err := Parse("SELECT ?x\nWHERE { ?x ?p }")
	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
	assert.Equal(t, 15, perr.Col)
}

func TestContextCancelled(t *testing.T) {
	e := testEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Cancellation is polled; a small query may complete before the first poll.
	_, err := e.Query(ctx, `SELECT * WHERE { ?a ?b ?c . ?d ?e ?f }`)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestIdempotent(t *testing.T) {
	e := testEngine(t)
	q := `SELECT ?a ?t WHERE { ?m cs:hasTitle ?t . OPTIONAL { ?m cs:hasAuthor ?a } } ORDER BY DESC(?t)`
	first := run(t, e, q)
	second := run(t, e, q)
	assert.Equal(t, first, second)
}
