// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package executor runs composed queries against the loaded dataset.
//
// Execution is read only. Results are cached by query text; the graph
// never changes after load, so a cached table stays valid for the
// lifetime of the Executor.
package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/pdiddy/coldspray-hub/internal/graph"
	"github.com/pdiddy/coldspray-hub/internal/sparql"
	"github.com/pdiddy/coldspray-hub/pkg/types"
)

// ExecError reports a query that could not be executed.
type ExecError struct {
	Query string
	Err   error
}

func (e *ExecError) Error() string {
	return "query execution failed: " + e.Err.Error()
}

func (e *ExecError) Unwrap() error { return e.Err }

// Message returns the engine error without the wrapper prefix.
func (e *ExecError) Message() string { return e.Err.Error() }

// Syntax reports whether the query text was rejected by the parser.
func (e *ExecError) Syntax() bool { return errors.Is(e.Err, sparql.ErrSyntax) }

// Result is a query table with execution details.
type Result struct {
	Table    *sparql.Table
	Duration time.Duration
	Cached   bool
}

// Executor evaluates queries on one graph.
type Executor struct {
	engine  *sparql.Engine
	cache   *lru.Cache[string, *sparql.Table]
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithTimeout bounds each execution. Zero means no bound beyond the
// caller's context.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) { e.timeout = d }
}

// New returns an executor over g. namespace is bound to "cs:" for queries
// that do not declare it. A cache size of zero disables caching.
func New(g *graph.Graph, namespace string, cache types.CacheConfig, opts ...Option) (*Executor, error) {
	if g == nil {
		return nil, fmt.Errorf("executor: nil graph")
	}
	if namespace == "" {
		namespace = types.DefaultNamespace
	}
	e := &Executor{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	e.engine = sparql.NewEngine(g, sparql.WithPrefix("cs", namespace), sparql.WithLogger(e.logger))

	if cache.Size > 0 {
		c, err := lru.New[string, *sparql.Table](cache.Size)
		if err != nil {
			return nil, fmt.Errorf("creating result cache: %w", err)
		}
		e.cache = c
	}
	return e, nil
}

// Run executes query. Zero rows is a successful result. Any failure is
// returned as *ExecError.
func (e *Executor) Run(ctx context.Context, query string) (Result, error) {
	if e.cache != nil {
		if t, ok := e.cache.Get(query); ok {
			cacheHits.Inc()
			queriesTotal.WithLabelValues(outcome(t)).Inc()
			return Result{Table: cloneTable(t), Cached: true}, nil
		}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	t, err := e.engine.Query(ctx, query)
	elapsed := time.Since(start)
	if err != nil {
		queriesTotal.WithLabelValues(outcomeError).Inc()
		queryDuration.WithLabelValues(outcomeError).Observe(elapsed.Seconds())
		e.logger.Warn("query failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return Result{}, &ExecError{Query: query, Err: err}
	}

	o := outcome(t)
	queriesTotal.WithLabelValues(o).Inc()
	queryDuration.WithLabelValues(o).Observe(elapsed.Seconds())
	queryRows.Observe(float64(t.Len()))
	e.logger.Debug("query executed",
		zap.Int("rows", t.Len()),
		zap.Duration("elapsed", elapsed))

	if e.cache != nil {
		e.cache.Add(query, t)
	}
	return Result{Table: cloneTable(t), Duration: elapsed}, nil
}

// Purge drops every cached result.
func (e *Executor) Purge() {
	if e.cache != nil {
		e.cache.Purge()
	}
}

func outcome(t *sparql.Table) string {
	if t.Len() == 0 {
		return outcomeEmpty
	}
	return outcomeOK
}

func cloneTable(t *sparql.Table) *sparql.Table {
	out := &sparql.Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}
