// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/coldspray-hub/internal/dataset"
	"github.com/pdiddy/coldspray-hub/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser, contributions, and calculators as a JSON API",
	Long: `Serve loads the dataset once and answers API requests until
interrupted. A missing or malformed dataset stops startup.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	h, err := openHub(cfg)
	if err != nil {
		return err
	}
	defer h.close()

	st := dataset.ComputeStats(h.graph, cfg.Dataset.Namespace)
	logger.Info("dataset ready",
		zap.String("path", cfg.Dataset.Path),
		zap.Int("triples", st.Triples),
		zap.Int("papers", st.Papers))

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	srv, err := server.New(server.Deps{
		Browse:    h.browse,
		Graph:     h.graph,
		Namespace: cfg.Dataset.Namespace,
		Contrib:   h.contrib,
		History:   h.history,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx, cfg.Server.Addr)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}
