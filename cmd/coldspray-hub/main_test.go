// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/coldspray-hub/internal/calc"
	"github.com/pdiddy/coldspray-hub/internal/compose"
	"github.com/pdiddy/coldspray-hub/internal/fragment"
	"github.com/pdiddy/coldspray-hub/internal/history"
	"github.com/pdiddy/coldspray-hub/pkg/types"
)

const fixtureTTL = `@prefix cs: <http://www.semanticweb.org/coldspray#> .

cs:p1 a cs:ColdSprayPaper ; cs:hasDOI "10.1000/a" ; cs:hasMetadata cs:m1 .
cs:m1 a cs:Metadata ; cs:hasTitle "Aluminium coatings" ; cs:hasPublicationYear "2018" .

cs:p2 a cs:ColdSprayPaper ; cs:hasDOI "10.1000/b" ; cs:hasMetadata cs:m2 .
cs:m2 a cs:Metadata ; cs:hasTitle "Copper deposits" ; cs:hasPublicationYear "2022" .
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseFilter(t *testing.T) {
	cat, choice, err := parseFilter("material=Copper and Copper Alloys")
	require.NoError(t, err)
	assert.Equal(t, fragment.Material, cat)
	assert.Equal(t, compose.Choice{Option: "Copper and Copper Alloys"}, choice)

	var keywordCat fragment.Category
	found := false
	for _, c := range fragment.Categories() {
		if _, ok := fragment.Template(c); ok {
			keywordCat, found = c, true
			break
		}
	}
	require.True(t, found)
	cat, choice, err = parseFilter(keywordCat.String() + "=~hardness")
	require.NoError(t, err)
	assert.Equal(t, keywordCat, cat)
	assert.Equal(t, fragment.OptionKeyword, choice.Option)
	assert.Equal(t, "hardness", choice.Keyword)
}

func TestParseFilterErrors(t *testing.T) {
	_, _, err := parseFilter("material")
	assert.Error(t, err)

	_, _, err = parseFilter("colour=red")
	assert.Error(t, err)

	for _, c := range fragment.Categories() {
		if _, ok := fragment.Template(c); ok {
			continue
		}
		_, _, err = parseFilter(c.String() + "=~x")
		assert.ErrorContains(t, err, "no keyword search")
		return
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "µµµ...", truncate("µµµµµµµµ", 6))
}

func TestLoadConfigDefaults(t *testing.T) {
	setDefaults(types.DefaultHubConfig())
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, types.DefaultNamespace, cfg.Dataset.Namespace)
	assert.Equal(t, 128, cfg.Cache.Size)
	assert.Equal(t, 30*time.Second, cfg.Server.QueryTimeout)
}

func TestFormatSweep(t *testing.T) {
	sw := calc.Sweep{
		Label:  "d (um)",
		Title:  "Critical velocity",
		X:      []float64{10, 20},
		Series: []calc.Series{{Name: "Assadi et al. (2003)", Y: []float64{600, 650.5}}},
	}
	var buf bytes.Buffer
	require.NoError(t, formatSweep(&buf, sw))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Critical velocity", lines[0])
	assert.Contains(t, lines[1], "Assadi et al. (2003)")
	assert.Contains(t, lines[3], "650.50")
}

func TestFormatHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatHistory(&buf, nil))
	assert.Equal(t, "No queries recorded.\n", buf.String())

	buf.Reset()
	entries := []history.Entry{
		{ID: "a", CreatedAt: time.Now(), PaperType: types.PaperAny, Rows: 2, Papers: 2},
		{ID: "b", CreatedAt: time.Now(), PaperType: types.PaperAny, Error: "sparql: bad"},
	}
	require.NoError(t, formatHistory(&buf, entries))
	out := buf.String()
	assert.Contains(t, out, "error: sparql: bad")
	assert.Contains(t, out, "2 entries")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "coldspray-hub dev\n", out)
}

func TestQueryAndSubmitCommands(t *testing.T) {
	dir := t.TempDir()
	ttl := filepath.Join(dir, "database.ttl")
	require.NoError(t, os.WriteFile(ttl, []byte(fixtureTTL), 0o644))
	logPath := filepath.Join(dir, "doi_entries.txt")
	histDir := filepath.Join(dir, "history")

	common := []string{"--dataset", ttl, "--history-dir", histDir, "--contrib-log", logPath}

	out, err := execute(t, append([]string{"query"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Copper deposits")
	assert.Contains(t, out, "2 rows, 2 papers")

	out, err = execute(t, append([]string{"submit", " 10.1/xyz "}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Thank you")
	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, "10.1/xyz\n", string(data))

	out, err = execute(t, append([]string{"history", "list"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "1 entries")
}

func TestCriticalVelocityCommand(t *testing.T) {
	out, err := execute(t, "critical-velocity", "--material", "Al")
	require.NoError(t, err)
	assert.Contains(t, out, "Assadi et al. (2003):    685.0 m/s")
}
