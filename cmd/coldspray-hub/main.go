// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the coldspray-hub CLI: the dataset
// browser, the DOI contribution log, the calculators, and the API server.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/coldspray-hub/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	verbose bool
	logger  = zap.NewNop()
)

// rootCmd is the base command for the coldspray-hub CLI.
var rootCmd = &cobra.Command{
	Use:   "coldspray-hub",
	Short: "Browse the Cold Spray Hub research dataset",
	Long: `coldspray-hub loads the cold spray knowledge graph (a Turtle file of
papers, materials, process parameters, results, and numerical studies) and
answers filtered queries against it.

Use query to compose and run a browser selection, papers and describe to
inspect records, submit to suggest a DOI for the next dataset update, and
critical-velocity or particle-velocity for the calculators. serve exposes
all of it as a JSON API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		} else if lvl := viper.GetString("log.level"); lvl != "" {
			l, err := zapcore.ParseLevel(lvl)
			if err != nil {
				return fmt.Errorf("parsing log.level: %w", err)
			}
			config.Level = zap.NewAtomicLevelAt(l)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./coldspray-hub.yaml or ~/.config/coldspray-hub/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.String("dataset", "", "dataset file (default data/database.ttl)")
	pf.String("history-dir", "", "query history directory (default data/history)")
	pf.String("contrib-log", "", "DOI contribution log (default data/doi_entries.txt)")

	_ = viper.BindPFlag("dataset.path", pf.Lookup("dataset"))
	_ = viper.BindPFlag("history.dir", pf.Lookup("history-dir"))
	_ = viper.BindPFlag("contrib.path", pf.Lookup("contrib-log"))
}

func initConfig() {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("coldspray-hub")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "coldspray-hub"))
		}
	}

	setDefaults(types.DefaultHubConfig())
	viper.SetEnvPrefix("COLDSPRAY_HUB")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
