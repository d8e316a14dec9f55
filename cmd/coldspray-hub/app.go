// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/pdiddy/coldspray-hub/internal/browse"
	"github.com/pdiddy/coldspray-hub/internal/compose"
	"github.com/pdiddy/coldspray-hub/internal/contrib"
	"github.com/pdiddy/coldspray-hub/internal/dataset"
	"github.com/pdiddy/coldspray-hub/internal/executor"
	"github.com/pdiddy/coldspray-hub/internal/graph"
	"github.com/pdiddy/coldspray-hub/internal/history"
	"github.com/pdiddy/coldspray-hub/pkg/types"
)

// hub holds the components built from one configuration.
type hub struct {
	cfg     types.HubConfig
	graph   *graph.Graph
	browse  *browse.Service
	history *history.Store
	contrib *contrib.Log
}

// openHub loads the dataset and wires the browser. The history store is
// opened when enabled; call close when done.
func openHub(cfg types.HubConfig) (*hub, error) {
	g, err := dataset.NewLoader(cfg.Dataset, dataset.WithLogger(logger)).Graph()
	if err != nil {
		return nil, err
	}
	ex, err := executor.New(g, cfg.Dataset.Namespace, cfg.Cache,
		executor.WithLogger(logger),
		executor.WithTimeout(cfg.Server.QueryTimeout))
	if err != nil {
		return nil, err
	}

	h := &hub{cfg: cfg, graph: g, contrib: contrib.NewLog(cfg.Contribution.Path, logger)}
	var rec browse.Recorder
	if cfg.History.Enabled {
		s, err := history.NewStore(cfg.History)
		if err != nil {
			return nil, fmt.Errorf("opening history: %w", err)
		}
		h.history = s
		rec = s
	}
	h.browse = browse.New(compose.New(cfg.Dataset.Namespace), ex, rec, logger)
	return h, nil
}

func (h *hub) close() {
	if h.history != nil {
		h.history.Close()
	}
}

// openHistory opens the history store without loading the dataset.
func openHistory(cfg types.HubConfig) (*history.Store, error) {
	if !cfg.History.Enabled {
		return nil, errors.New("history is disabled (history.enabled: false)")
	}
	return history.NewStore(cfg.History)
}
