// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package present turns query tables into the read-only result grid of
// the browser.
package present

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pdiddy/coldspray-hub/internal/sparql"
)

// RowNumberColumn is the header of the leading row number column.
const RowNumberColumn = " "

const doiColumn = "DOI"

// Grid is a presented result: row numbers first, identity columns next,
// then the remaining columns in query order.
type Grid struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`

	// Papers is the number of numbered rows.
	Papers int `json:"papers"`
}

// Present reorders t and blanks identity cells on every row whose
// identity tuple equals the tuple of the row immediately before it. The
// row number counts rows whose DOI is shown. identity names missing from
// t are ignored.
func Present(t *sparql.Table, identity []string) Grid {
	var idIdx, restIdx []int
	for _, name := range identity {
		if i := t.Column(name); i >= 0 && !slices.Contains(idIdx, i) {
			idIdx = append(idIdx, i)
		}
	}
	for i := range t.Columns {
		if !slices.Contains(idIdx, i) {
			restIdx = append(restIdx, i)
		}
	}

	g := Grid{
		Columns: make([]string, 0, len(t.Columns)+1),
		Rows:    make([][]string, 0, len(t.Rows)),
	}
	g.Columns = append(g.Columns, RowNumberColumn)
	for _, i := range idIdx {
		g.Columns = append(g.Columns, t.Columns[i])
	}
	for _, i := range restIdx {
		g.Columns = append(g.Columns, t.Columns[i])
	}

	doi := slices.Index(g.Columns, doiColumn)
	var prev []string
	for _, raw := range t.Rows {
		tuple := make([]string, len(idIdx))
		for k, i := range idIdx {
			tuple[k] = raw[i]
		}
		dup := len(tuple) > 0 && prev != nil && slices.Equal(tuple, prev)
		prev = tuple

		row := make([]string, 0, len(g.Columns))
		row = append(row, "")
		for _, v := range tuple {
			if dup {
				v = ""
			}
			row = append(row, v)
		}
		for _, i := range restIdx {
			row = append(row, raw[i])
		}

		numbered := !dup
		if doi >= 0 {
			numbered = row[doi] != ""
		}
		if numbered {
			g.Papers++
			row[0] = strconv.Itoa(g.Papers)
		}
		g.Rows = append(g.Rows, row)
	}
	return g
}

// Len returns the number of rows.
func (g Grid) Len() int { return len(g.Rows) }

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Format writes g as a bordered text table.
func (g Grid) Format(w io.Writer) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(g.Columns...).
		Rows(g.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d rows, %d papers\n", g.Len(), g.Papers)
	return err
}
