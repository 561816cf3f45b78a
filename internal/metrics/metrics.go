// Package metrics exposes the naming server's Prometheus collectors,
// registered against a private registry so /metrics never leaks the
// process-default collectors of whatever else shares the binary.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the private collector registry served at /metrics.
var Registry = prometheus.NewRegistry()

var (
	// OperationsTotal counts dispatched wire operations by type and outcome.
	OperationsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ns_operations_total",
			Help: "Total dispatched operations by message type and error code",
		},
		[]string{"operation", "result"},
	)

	// OperationDuration tracks handler latency by message type.
	OperationDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ns_operation_duration_seconds",
			Help:    "Dispatched operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// StorageServersByState gauges the number of SS records per state.
	StorageServersByState = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ns_storage_servers",
			Help: "Number of known storage servers by state",
		},
		[]string{"state"},
	)

	// ActiveClients gauges concurrently connected client sessions.
	ActiveClients = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "ns_active_clients",
			Help: "Current number of logged-in client sessions",
		},
	)

	// SearchCacheHits/Misses count the bounded query memo's effectiveness.
	SearchCacheHits = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Name: "ns_search_cache_hits_total",
			Help: "Total SEARCH requests served from the query memo",
		},
	)
	SearchCacheMisses = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Name: "ns_search_cache_misses_total",
			Help: "Total SEARCH requests that missed the query memo",
		},
	)

	// FallbackOutcomes counts read-path resolutions by outcome (data from
	// cache or backup, failover, unavailable, error).
	FallbackOutcomes = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "ns_fallback_outcomes_total",
			Help: "Read-path fallback resolutions by outcome",
		},
		[]string{"outcome"},
	)
)
