package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Quote metrics
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zapengine_quote_requests_total",
			Help: "Total number of swap quote requests",
		},
		[]string{"pool_kind", "status"},
	)

	QuoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zapengine_quote_duration_seconds",
			Help:    "Swap quote duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"pool_kind"},
	)

	// Route metrics
	RouteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zapengine_route_requests_total",
			Help: "Total number of zap route requests",
		},
		[]string{"pool_kind", "status"},
	)

	DegradedRoutes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zapengine_degraded_routes_total",
		Help: "Total number of routes served via the mint-everything fallback",
	})

	PegSearchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "zapengine_peg_search_duration_seconds",
		Help:    "Peg point binary search duration in seconds",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	// Snapshot cache metrics
	SnapshotCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zapengine_snapshot_cache_hits_total",
		Help: "Total number of pool snapshot cache hits",
	})

	SnapshotCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zapengine_snapshot_cache_misses_total",
		Help: "Total number of pool snapshot cache misses",
	})

	SnapshotCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zapengine_snapshot_cache_size",
		Help: "Current number of entries in the snapshot cache",
	})

	// Chain fetch metrics
	SnapshotFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "zapengine_snapshot_fetch_duration_seconds",
		Help:    "On-chain pool state fetch duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	SnapshotFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zapengine_snapshot_fetch_failures_total",
			Help: "Total number of failed pool state fetches",
		},
		[]string{"pool_kind"},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zapengine_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zapengine_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
