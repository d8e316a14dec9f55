// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the browser, the contribution form, and the
// calculators as a JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pdiddy/coldspray-hub/internal/browse"
	"github.com/pdiddy/coldspray-hub/internal/contrib"
	"github.com/pdiddy/coldspray-hub/internal/graph"
	"github.com/pdiddy/coldspray-hub/internal/history"
)

const shutdownTimeout = 10 * time.Second

// Deps are the components the handlers serve.
type Deps struct {
	Browse    *browse.Service
	Graph     *graph.Graph
	Namespace string
	Contrib   *contrib.Log

	// History is optional; without it the history routes return 404.
	History *history.Store

	Logger *zap.Logger
}

// Server is the HTTP surface of the hub.
type Server struct {
	router *gin.Engine
	deps   Deps
	logger *zap.Logger
}

// New builds the router. Deps.Browse, Deps.Graph, and Deps.Contrib are
// required.
func New(deps Deps) (*Server, error) {
	if deps.Browse == nil || deps.Graph == nil || deps.Contrib == nil {
		return nil, errors.New("server: browse service, graph, and contribution log are required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(deps.Logger), requestMetrics())

	s := &Server{router: r, deps: deps, logger: deps.Logger}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	{
		v1.GET("/options", s.handleOptions)
		v1.POST("/query/compose", s.handleCompose)
		v1.POST("/query", s.handleQuery)
		v1.POST("/sparql", s.handleSPARQL)

		v1.GET("/papers", s.handlePapers)
		v1.GET("/papers/describe", s.handleDescribe)
		v1.GET("/stats", s.handleStats)
		v1.POST("/contributions", s.handleContribute)

		calcs := v1.Group("/calculators")
		{
			calcs.GET("/critical-velocity", s.handleCritical)
			calcs.GET("/critical-velocity/sweep", s.handleCriticalSweep)
			calcs.GET("/critical-velocity/plot.svg", s.handleCriticalPlot)
			calcs.GET("/particle-velocity", s.handleParticle)
			calcs.GET("/particle-velocity/sweep", s.handleParticleSweep)
			calcs.GET("/particle-velocity/plot.svg", s.handleParticlePlot)
		}

		hist := v1.Group("/history")
		{
			hist.GET("", s.handleHistory)
			hist.GET("/:id", s.handleHistoryEntry)
		}
	}
}

// Handler returns the router for use with httptest or a custom server.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "triples": s.deps.Graph.Len()})
}
