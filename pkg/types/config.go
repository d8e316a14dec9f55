// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DatasetFormat names the RDF serialization of the dataset file.
type DatasetFormat string

const (
	FormatTurtle   DatasetFormat = "turtle"
	FormatNTriples DatasetFormat = "ntriples"
)

// DefaultNamespace is the vocabulary IRI bound to the "cs:" prefix.
const DefaultNamespace = "http://www.semanticweb.org/coldspray#"

// DatasetConfig holds settings for loading the knowledge graph.
type DatasetConfig struct {
	// Path is the dataset file (e.g. "data/database.ttl").
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// Format selects the parser: turtle or ntriples. Empty infers from the extension.
	Format DatasetFormat `json:"format" yaml:"format" mapstructure:"format"`

	// Namespace is the IRI bound to "cs:" in composed queries.
	Namespace string `json:"namespace" yaml:"namespace" mapstructure:"namespace"`
}

// ContributionConfig holds settings for the DOI contribution log.
type ContributionConfig struct {
	// Path is the append-only log file, one DOI per line.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// HistoryConfig holds settings for the query history store.
type HistoryConfig struct {
	// Dir contains history.db and its exports.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Enabled turns recording of executed queries on or off.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
}

// CacheConfig holds settings for the query result cache.
type CacheConfig struct {
	// Size is the number of query results kept. Zero disables caching.
	Size int `json:"size" yaml:"size" mapstructure:"size"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// QueryTimeout bounds a single query execution.
	QueryTimeout time.Duration `json:"query_timeout" yaml:"query_timeout" mapstructure:"query_timeout"`
}

// HubConfig groups all component configurations.
type HubConfig struct {
	Dataset      DatasetConfig      `json:"dataset" yaml:"dataset" mapstructure:"dataset"`
	Contribution ContributionConfig `json:"contrib" yaml:"contrib" mapstructure:"contrib"`
	History      HistoryConfig      `json:"history" yaml:"history" mapstructure:"history"`
	Cache        CacheConfig        `json:"cache" yaml:"cache" mapstructure:"cache"`
	Server       ServerConfig       `json:"server" yaml:"server" mapstructure:"server"`
}

// DefaultHubConfig returns the settings used when no config file is present.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		Dataset: DatasetConfig{
			Path:      "data/database.ttl",
			Format:    FormatTurtle,
			Namespace: DefaultNamespace,
		},
		Contribution: ContributionConfig{Path: "data/doi_entries.txt"},
		History:      HistoryConfig{Dir: "data/history", Enabled: true},
		Cache:        CacheConfig{Size: 128},
		Server:       ServerConfig{Addr: ":8080", QueryTimeout: 30 * time.Second},
	}
}
