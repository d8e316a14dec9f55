// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/coldspray-hub/internal/browse"
	"github.com/pdiddy/coldspray-hub/internal/compose"
	"github.com/pdiddy/coldspray-hub/internal/contrib"
	"github.com/pdiddy/coldspray-hub/internal/executor"
	"github.com/pdiddy/coldspray-hub/internal/graph"
	"github.com/pdiddy/coldspray-hub/internal/httputil"
	"github.com/pdiddy/coldspray-hub/internal/server"
	"github.com/pdiddy/coldspray-hub/pkg/types"
)

const papers = `@prefix cs: <http://www.semanticweb.org/coldspray#> .

cs:p1 a cs:ColdSprayPaper ; cs:hasDOI "10.1000/a" ; cs:hasMetadata cs:m1 .
cs:m1 a cs:Metadata ; cs:hasTitle "Only paper" ; cs:hasPublicationYear "2020" .
`

func hub(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	g, err := graph.Load(strings.NewReader(papers), types.FormatTurtle)
	require.NoError(t, err)
	ex, err := executor.New(g, "", types.CacheConfig{})
	require.NoError(t, err)
	logPath := filepath.Join(t.TempDir(), "doi_entries.txt")
	srv, err := server.New(server.Deps{
		Browse:  browse.New(compose.New(""), ex, nil, nil),
		Graph:   g,
		Contrib: contrib.NewLog(logPath, nil),
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, logPath
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New("ftp://example.org", nil)
	assert.Error(t, err)
	_, err = New("://", nil)
	assert.Error(t, err)
}

func TestBrowseRemote(t *testing.T) {
	ts, _ := hub(t)
	c, err := New(ts.URL+"/", nil)
	require.NoError(t, err)

	out, err := c.Browse(context.Background(), compose.DefaultSelection())
	require.NoError(t, err)
	require.Len(t, out.Grid.Rows, 1)
	assert.Equal(t, "Only paper", out.Grid.Rows[0][3])
}

func TestQueryRemoteSyntaxError(t *testing.T) {
	ts, _ := hub(t)
	c, err := New(ts.URL, nil)
	require.NoError(t, err)

	_, err = c.Query(context.Background(), `SELECT ?x WHERE {`)
	var remote *Error
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusUnprocessableEntity, remote.Status)
	assert.Contains(t, remote.Message, "sparql")
}

func TestSubmitRemote(t *testing.T) {
	ts, logPath := hub(t)
	c, err := New(ts.URL, nil)
	require.NoError(t, err)

	msg, err := c.Submit(context.Background(), "10.1016/y")
	require.NoError(t, err)
	assert.Equal(t, contrib.ThankYou, msg)
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "10.1016/y\n", string(data))

	_, err = c.Submit(context.Background(), " ")
	var remote *Error
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, contrib.ErrEmptyDOI.Error(), remote.Message)
}

func TestSubmitRetriesWhenBusy(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"ok"}`))
	}))
	defer ts.Close()

	c, err := New(ts.URL, nil)
	require.NoError(t, err)
	msg, err := c.WithPolicy(httputil.Policy{BaseDelay: time.Millisecond}).Submit(context.Background(), "10.1/z")
	require.NoError(t, err)
	assert.Equal(t, "ok", msg)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
