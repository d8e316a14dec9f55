// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/coldspray-hub/pkg/types"
)

func setDefaults(d types.HubConfig) {
	viper.SetDefault("dataset.path", d.Dataset.Path)
	viper.SetDefault("dataset.format", string(d.Dataset.Format))
	viper.SetDefault("dataset.namespace", d.Dataset.Namespace)
	viper.SetDefault("contrib.path", d.Contribution.Path)
	viper.SetDefault("history.dir", d.History.Dir)
	viper.SetDefault("history.enabled", d.History.Enabled)
	viper.SetDefault("cache.size", d.Cache.Size)
	viper.SetDefault("server.addr", d.Server.Addr)
	viper.SetDefault("server.query_timeout", d.Server.QueryTimeout)
	viper.SetDefault("log.level", "")

	// Nested keys map to COLDSPRAY_HUB_DATASET_PATH and so on.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

// loadConfig returns the effective configuration: defaults, then the
// config file, then the environment, then flags.
func loadConfig() (types.HubConfig, error) {
	cfg := types.DefaultHubConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.HubConfig{}, fmt.Errorf("reading configuration: %w", err)
	}
	switch cfg.Dataset.Format {
	case "", types.FormatTurtle, types.FormatNTriples:
	default:
		return types.HubConfig{}, fmt.Errorf("dataset.format %q: use turtle or ntriples", cfg.Dataset.Format)
	}
	return cfg, nil
}
