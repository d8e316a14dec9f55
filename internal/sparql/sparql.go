// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sparql evaluates a subset of SPARQL 1.1 SELECT queries against an
// in-memory graph.
//
// Supported: PREFIX, SELECT [DISTINCT], basic graph patterns with ';' ','
// and 'a', FILTER, OPTIONAL, UNION, nested groups, BIND, ORDER BY,
// LIMIT and OFFSET, and the common string and term functions. Property
// paths, aggregates, subqueries and named graphs are not supported.
package sparql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/coldspray-hub/internal/graph"
)

var (
	// ErrSyntax is wrapped by every parse failure.
	ErrSyntax = errors.New("sparql: syntax error")

	// ErrEvaluation is wrapped by failures that abort a running query,
	// such as an invalid regular expression.
	ErrEvaluation = errors.New("sparql: evaluation error")
)

// Error is a parse failure at a position in the query text.
type Error struct {
	Pos  int
	Line int
	Col  int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("sparql: line %d, column %d: %s", e.Line, e.Col, e.Msg)
}

func (e *Error) Unwrap() error { return ErrSyntax }

func newError(src string, pos int, format string, args ...any) *Error {
	if pos > len(src) {
		pos = len(src)
	}
	before := src[:pos]
	line := strings.Count(before, "\n") + 1
	col := pos - strings.LastIndexByte(before, '\n')
	return &Error{Pos: pos, Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

// Table is a query result: one column per projected variable and one row
// per solution. Unbound values are empty strings.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Column returns the index of the named column, or -1.
func (t *Table) Column(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Engine runs queries against one graph. It is safe for concurrent use
// as long as the graph is not modified.
type Engine struct {
	graph    *graph.Graph
	prefixes map[string]string
	logger   *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPrefix declares a prefix available to every query without a
// PREFIX line. Prefixes declared in the query take precedence.
func WithPrefix(name, iri string) Option {
	return func(e *Engine) { e.prefixes[name] = iri }
}

// WithLogger sets the logger used for query tracing.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine returns an engine over g.
func NewEngine(g *graph.Graph, opts ...Option) *Engine {
	e := &Engine{
		graph:    g,
		prefixes: map[string]string{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query parses and evaluates text. Parse failures wrap ErrSyntax and carry
// an *Error; runtime failures wrap ErrEvaluation. A panic inside the
// evaluator is recovered and reported as an evaluation error.
func (e *Engine) Query(ctx context.Context, text string) (table *Table, err error) {
	q, err := parseWithPrefixes(text, e.prefixes)
	if err != nil {
		return nil, err
	}
	return e.Exec(ctx, q)
}

// Exec evaluates a parsed query.
func (e *Engine) Exec(ctx context.Context, q *Query) (table *Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			table = nil
			err = fmt.Errorf("%w: %v", ErrEvaluation, r)
		}
	}()

	ev := &evaluator{ctx: ctx, graph: e.graph, regexps: map[string]*regexpEntry{}}
	sols, err := ev.group(q.Where, []solution{{}})
	if err != nil {
		return nil, err
	}
	e.logger.Debug("query evaluated", zap.Int("solutions", len(sols)))

	if len(q.Order) > 0 {
		if err := ev.order(sols, q.Order); err != nil {
			return nil, err
		}
	}
	return project(q, sols), nil
}

// project applies the SELECT list, DISTINCT, OFFSET and LIMIT.
func project(q *Query, sols []solution) *Table {
	cols := q.Vars
	if len(cols) == 0 {
		cols = q.Where.allVars()
	}
	t := &Table{Columns: append([]string(nil), cols...), Rows: [][]string{}}
	seen := map[string]struct{}{}
	skipped := 0
	for _, s := range sols {
		if q.Distinct {
			key := s.key(cols)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		if skipped < q.Offset {
			skipped++
			continue
		}
		if q.Limit >= 0 && len(t.Rows) >= q.Limit {
			break
		}
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = s[c].String()
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
