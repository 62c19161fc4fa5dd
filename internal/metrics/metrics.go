package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HistoryPagesFetched tracks history pages served per source
	HistoryPagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algowatch_history_pages_fetched_total",
			Help: "Total number of transaction history pages fetched",
		},
		[]string{"source"},
	)

	// PageCacheLookups tracks page cache hits and misses
	PageCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algowatch_page_cache_lookups_total",
			Help: "Page cache lookups by result",
		},
		[]string{"result"},
	)

	// PendingPolls tracks pending pool polls by outcome
	PendingPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algowatch_pending_polls_total",
			Help: "Total number of pending transaction polls",
		},
		[]string{"outcome"},
	)

	// ActivePollers tracks pollers currently running
	ActivePollers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "algowatch_pending_pollers_active",
			Help: "Number of pending transaction pollers currently running",
		},
	)

	// UpstreamCallsTotal tracks calls to algod and indexer
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algowatch_upstream_calls_total",
			Help: "Total number of upstream REST calls",
		},
		[]string{"provider", "operation"},
	)

	// UpstreamErrorsTotal tracks upstream errors by category
	UpstreamErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algowatch_upstream_errors_total",
			Help: "Total number of upstream REST errors",
		},
		[]string{"provider", "error_type"},
	)

	// UpstreamLatency tracks upstream call latency
	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "algowatch_upstream_latency_seconds",
			Help:    "Upstream REST call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "operation"},
	)

	// DBConnectionPoolUsage tracks the database pool usage percentage
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "algowatch_db_connection_pool_usage_percent",
			Help: "Database connection pool usage percentage",
		},
	)
)
