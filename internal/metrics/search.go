package metrics

import "github.com/prometheus/client_golang/prometheus"

// Similarity-resolution Prometheus metrics.
var (
	// SearchResolutionsTotal counts resolutions by the level that satisfied
	// the query (primary, relaxed, minimal, guaranteed, empty, cache).
	SearchResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "beans",
			Name:      "search_resolutions_total",
			Help:      "Similarity resolutions by satisfying level",
		},
		[]string{"level"},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "beans",
			Name:      "search_cache_total",
			Help:      "Result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss" / "bypass"
	)

	SearchStoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "beans",
			Name:      "search_store_errors_total",
			Help:      "Store errors absorbed by escalation, by level",
		},
		[]string{"level"},
	)

	StreamBatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "beans",
			Name:      "stream_batches_total",
			Help:      "Partial result batches emitted to streaming sinks",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchResolutionsTotal)
	prometheus.MustRegister(SearchCacheTotal)
	prometheus.MustRegister(SearchStoreErrorsTotal)
	prometheus.MustRegister(StreamBatchesTotal)
	searchMetricsRegistered = true
}
