// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package executor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/coldspray-hub/internal/compose"
	"github.com/pdiddy/coldspray-hub/internal/fragment"
	"github.com/pdiddy/coldspray-hub/internal/graph"
	"github.com/pdiddy/coldspray-hub/pkg/types"
)

const threePapers = `@prefix cs: <http://www.semanticweb.org/coldspray#> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .

cs:p1 a cs:ColdSprayPaper ; cs:hasDOI "10.1000/a" ; cs:hasMetadata cs:m1 .
cs:m1 a cs:Metadata ; cs:hasTitle "First" ; cs:hasPublicationYear "2018"^^xsd:integer .

cs:p2 a cs:ColdSprayPaper ; cs:hasDOI "10.1000/b" ; cs:hasMetadata cs:m2 .
cs:m2 a cs:Metadata ; cs:hasTitle "Second" ; cs:hasPublicationYear "2022"^^xsd:integer .

cs:p3 a cs:ColdSprayPaper ; cs:hasDOI "10.1000/c" ; cs:hasMetadata cs:m3 .
cs:m3 a cs:Metadata ; cs:hasTitle "Third" ; cs:hasPublicationYear "2020"^^xsd:integer .
`

const materials = `@prefix cs: <http://www.semanticweb.org/coldspray#> .

cs:al a cs:ColdSprayPaper ; cs:hasDOI "10.1000/al" ; cs:hasMetadata cs:mal ;
    cs:hasColdSprayProcess cs:proc1 ; cs:hasMaterial cs:mat1 .
cs:mal a cs:Metadata ; cs:hasTitle "Aluminium" ; cs:hasPublicationYear "2021" .
cs:mat1 cs:hasComposition "Al-6061" ; cs:hasCondition "T6" .

cs:cu a cs:ColdSprayPaper ; cs:hasDOI "10.1000/cu" ; cs:hasMetadata cs:mcu ;
    cs:hasColdSprayProcess cs:proc2 ; cs:hasMaterial cs:mat2 .
cs:mcu a cs:Metadata ; cs:hasTitle "Copper" ; cs:hasPublicationYear "2019" .
cs:mat2 cs:hasComposition "Cu-OFHC" ; cs:hasCondition "annealed" .
`

func testExecutor(t *testing.T, ttl string, size int) *Executor {
	t.Helper()
	g, err := graph.Load(strings.NewReader(ttl), types.FormatTurtle)
	require.NoError(t, err)
	e, err := New(g, "", types.CacheConfig{Size: size})
	require.NoError(t, err)
	return e
}

func TestDefaultSelectionReturnsEveryPaper(t *testing.T) {
	e := testExecutor(t, threePapers, 0)
	q, err := compose.New("").Compose(compose.DefaultSelection())
	require.NoError(t, err)

	res, err := e.Run(context.Background(), q.Text)
	require.NoError(t, err)
	assert.Equal(t, []string{"Year", "DOI", "Title"}, res.Table.Columns)
	assert.Equal(t, [][]string{
		{"2022", "https://doi.org/10.1000/b", "Second"},
		{"2020", "https://doi.org/10.1000/c", "Third"},
		{"2018", "https://doi.org/10.1000/a", "First"},
	}, res.Table.Rows)
}

func TestExperimentalMaterialFilter(t *testing.T) {
	e := testExecutor(t, materials, 0)
	sel := compose.DefaultSelection().With(fragment.Material, "Aluminum and Aluminum Alloys", "")
	sel.PaperType = types.PaperExperimental
	q, err := compose.New("").Compose(sel)
	require.NoError(t, err)
	assert.Contains(t, q.Vars, "Composition")
	assert.Contains(t, q.Vars, "Material_Condition")
	assert.Contains(t, q.Text, `"Al|Aluminum|aluminum"`)

	res, err := e.Run(context.Background(), q.Text)
	require.NoError(t, err)
	require.Len(t, res.Table.Rows, 1)
	row := res.Table.Rows[0]
	assert.Equal(t, "https://doi.org/10.1000/al", row[res.Table.Column("DOI")])
	assert.Equal(t, "Al-6061", row[res.Table.Column("Composition")])
	assert.Equal(t, "T6", row[res.Table.Column("Material_Condition")])
}

func TestZeroRows(t *testing.T) {
	e := testExecutor(t, threePapers, 0)
	sel := compose.DefaultSelection()
	sel.DOI = "no-such-doi"
	q, err := compose.New("").Compose(sel)
	require.NoError(t, err)

	res, err := e.Run(context.Background(), q.Text)
	require.NoError(t, err)
	assert.Empty(t, res.Table.Rows)
}

func TestIdempotentAndCached(t *testing.T) {
	e := testExecutor(t, threePapers, 8)
	q, err := compose.New("").Compose(compose.DefaultSelection())
	require.NoError(t, err)

	first, err := e.Run(context.Background(), q.Text)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := e.Run(context.Background(), q.Text)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Table, second.Table)

	// Callers cannot corrupt the cache through the returned table.
	second.Table.Rows[0][0] = "mutated"
	third, err := e.Run(context.Background(), q.Text)
	require.NoError(t, err)
	assert.Equal(t, first.Table, third.Table)

	e.Purge()
	fourth, err := e.Run(context.Background(), q.Text)
	require.NoError(t, err)
	assert.False(t, fourth.Cached)
}

func TestInvalidQueryIsExecError(t *testing.T) {
	e := testExecutor(t, threePapers, 8)
	_, err := e.Run(context.Background(), `SELECT ?x WHERE { ?x cs:p "broken }`)
	require.Error(t, err)

	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.True(t, execErr.Syntax())
	assert.Contains(t, execErr.Message(), "unterminated string")

	// The executor stays usable after a failure.
	_, err = e.Run(context.Background(), `SELECT ?x WHERE { ?x a cs:ColdSprayPaper }`)
	assert.NoError(t, err)
}

func TestMalformedKeywordRegex(t *testing.T) {
	e := testExecutor(t, materials, 0)
	sel := compose.DefaultSelection().With(fragment.Material, fragment.OptionKeyword, "Al(")
	sel.PaperType = types.PaperExperimental
	q, err := compose.New("").Compose(sel)
	require.NoError(t, err)

	_, err = e.Run(context.Background(), q.Text)
	var execErr *ExecError
	require.True(t, errors.As(err, &execErr))
	assert.False(t, execErr.Syntax())
}

func TestNewRejectsNilGraph(t *testing.T) {
	_, err := New(nil, "", types.CacheConfig{})
	assert.Error(t, err)
}
