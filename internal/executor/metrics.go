// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package executor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK    = "ok"
	outcomeError = "error"
	outcomeEmpty = "empty"
)

var (
	// queriesTotal counts executed queries.
	// Labels: outcome (ok, empty, error)
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coldspray_hub",
		Subsystem: "executor",
		Name:      "queries_total",
		Help:      "Total queries executed against the dataset",
	}, []string{"outcome"})

	// queryDuration measures evaluation time, cache hits excluded.
	// Labels: outcome
	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coldspray_hub",
		Subsystem: "executor",
		Name:      "query_duration_seconds",
		Help:      "Query evaluation latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"outcome"})

	// queryRows tracks result sizes.
	queryRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "coldspray_hub",
		Subsystem: "executor",
		Name:      "query_rows",
		Help:      "Rows returned per query",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	// cacheHits counts queries answered from the result cache.
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coldspray_hub",
		Subsystem: "executor",
		Name:      "cache_hits_total",
		Help:      "Total queries answered from the result cache",
	})
)
