// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package browse

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/coldspray-hub/internal/compose"
	"github.com/pdiddy/coldspray-hub/internal/executor"
	"github.com/pdiddy/coldspray-hub/internal/fragment"
	"github.com/pdiddy/coldspray-hub/internal/graph"
	"github.com/pdiddy/coldspray-hub/internal/history"
	"github.com/pdiddy/coldspray-hub/pkg/types"
)

const papers = `@prefix cs: <http://www.semanticweb.org/coldspray#> .

cs:p1 a cs:ColdSprayPaper ; cs:hasDOI "10.1000/a" ; cs:hasMetadata cs:m1 .
cs:m1 a cs:Metadata ; cs:hasTitle "First" ; cs:hasPublicationYear "2018" ;
    cs:hasAuthor "Ada Lovelace", "Charles Babbage" .

cs:p2 a cs:ColdSprayPaper ; cs:hasDOI "10.1000/b" ; cs:hasMetadata cs:m2 .
cs:m2 a cs:Metadata ; cs:hasTitle "Second" ; cs:hasPublicationYear "2022" ;
    cs:hasAuthor "Ada Lovelace" .
`

type memRecorder struct {
	entries []history.Entry
	err     error
}

func (m *memRecorder) Record(_ context.Context, e history.Entry) (history.Entry, error) {
	if m.err != nil {
		return history.Entry{}, m.err
	}
	e.ID = "h" + string(rune('0'+len(m.entries)))
	m.entries = append(m.entries, e)
	return e, nil
}

func testService(t *testing.T, rec Recorder) *Service {
	t.Helper()
	g, err := graph.Load(strings.NewReader(papers), types.FormatTurtle)
	require.NoError(t, err)
	ex, err := executor.New(g, "", types.CacheConfig{Size: 8})
	require.NoError(t, err)
	return New(compose.New(""), ex, rec, nil)
}

func TestBrowseDefaultSelection(t *testing.T) {
	rec := &memRecorder{}
	s := testService(t, rec)

	out, err := s.Browse(context.Background(), compose.DefaultSelection())
	require.NoError(t, err)
	assert.Equal(t, []string{" ", "Year", "DOI", "Title"}, out.Grid.Columns)
	require.Equal(t, 2, out.Grid.Len())
	assert.Equal(t, "2022", out.Grid.Rows[0][1])
	assert.Equal(t, 2, out.Grid.Papers)
	assert.False(t, out.Cached)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, out.HistoryID, rec.entries[0].ID)
	assert.Equal(t, 2, rec.entries[0].Rows)
	assert.Equal(t, out.Query.Text, rec.entries[0].Query)
	assert.Contains(t, rec.entries[0].Selection, `"paper_type":"any"`)
	assert.False(t, rec.entries[0].Failed())

	again, err := s.Browse(context.Background(), compose.DefaultSelection())
	require.NoError(t, err)
	assert.True(t, again.Cached)
}

func TestBrowseAuthorRowsBlankRepeatedIdentity(t *testing.T) {
	s := testService(t, nil)
	sel := compose.DefaultSelection()
	sel.Author = "Lovelace"

	out, err := s.Browse(context.Background(), sel)
	require.NoError(t, err)
	require.Equal(t, 2, out.Grid.Len())
	assert.Contains(t, out.Query.IdentityColumns, compose.VarAuthor)
	assert.Empty(t, out.HistoryID)
}

func TestBrowseInvalidSelection(t *testing.T) {
	rec := &memRecorder{}
	sel := compose.DefaultSelection()
	sel.PaperType = "Theoretical"
	_, err := testService(t, rec).Browse(context.Background(), sel)
	assert.ErrorIs(t, err, compose.ErrInvalidSelection)
	assert.Empty(t, rec.entries, "nothing ran")
}

func TestQueryRecordsFailure(t *testing.T) {
	rec := &memRecorder{}
	_, err := testService(t, rec).Query(context.Background(), `SELECT ?x WHERE { ?x ?p "unterminated }`)

	var execErr *executor.ExecError
	require.ErrorAs(t, err, &execErr)
	assert.True(t, execErr.Syntax())
	require.Len(t, rec.entries, 1)
	assert.True(t, rec.entries[0].Failed())
	assert.Equal(t, types.PaperAny, rec.entries[0].PaperType)
}

func TestQueryRawText(t *testing.T) {
	out, err := testService(t, nil).Query(context.Background(),
		`SELECT ?Title WHERE { ?m a cs:Metadata ; cs:hasTitle ?Title } ORDER BY ?Title`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Title"}, out.Query.Vars)
	assert.Equal(t, []string{" ", "Title"}, out.Grid.Columns)
	assert.Equal(t, "First", out.Grid.Rows[0][1])
}

func TestHistoryFailureDoesNotFailBrowse(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	out, err := testService(t, rec).Browse(context.Background(), compose.DefaultSelection())
	require.NoError(t, err)
	assert.Empty(t, out.HistoryID)
	assert.Equal(t, 2, out.Grid.Len())
}

func TestBrowseLogsUnencodableSelection(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	g, err := graph.Load(strings.NewReader(papers), types.FormatTurtle)
	require.NoError(t, err)
	ex, err := executor.New(g, "", types.CacheConfig{Size: 8})
	require.NoError(t, err)
	rec := &memRecorder{}
	s := New(compose.New(""), ex, rec, zap.New(core))

	sel := compose.DefaultSelection().With(fragment.Category(99), "x", "")
	out, err := s.Browse(context.Background(), sel)
	require.NoError(t, err)
	assert.Len(t, out.Grid.Rows, 2)

	require.Len(t, rec.entries, 1)
	assert.Empty(t, rec.entries[0].Selection)
	assert.Equal(t, 1, logs.FilterMessage("encoding selection for history").Len())
}
