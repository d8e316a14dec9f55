// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset loads the cold spray knowledge graph and reads paper
// records out of it.
package dataset

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/coldspray-hub/internal/graph"
	"github.com/pdiddy/coldspray-hub/pkg/types"
)

// Loader parses the dataset file once and shares the graph for the life
// of the process. A failed load is remembered and returned on every call.
type Loader struct {
	cfg    types.DatasetConfig
	logger *zap.Logger

	once  sync.Once
	graph *graph.Graph
	err   error
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) { ld.logger = l }
}

// NewLoader returns a loader for cfg. Nothing is read until Graph.
func NewLoader(cfg types.DatasetConfig, opts ...Option) *Loader {
	if cfg.Namespace == "" {
		cfg.Namespace = types.DefaultNamespace
	}
	l := &Loader{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Config returns the dataset settings with defaults applied.
func (l *Loader) Config() types.DatasetConfig { return l.cfg }

// Graph returns the loaded graph, reading the file on first use.
func (l *Loader) Graph() (*graph.Graph, error) {
	l.once.Do(func() {
		l.graph, l.err = l.load()
	})
	return l.graph, l.err
}

func (l *Loader) load() (*graph.Graph, error) {
	start := time.Now()
	f, err := os.Open(l.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	format := l.cfg.Format
	if format == "" {
		format = graph.FormatForPath(l.cfg.Path)
	}
	g, err := graph.Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("loading dataset %s: %w", l.cfg.Path, err)
	}
	l.logger.Info("dataset loaded",
		zap.String("path", l.cfg.Path),
		zap.Int("triples", g.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return g, nil
}
