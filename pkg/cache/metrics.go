package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks store hits by backend (memory, redis)
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wb_mrv_cache_hits_total",
			Help: "Total number of most-recent-value cache hits",
		},
		[]string{"backend"},
	)

	// CacheMisses tracks store misses
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wb_mrv_cache_misses_total",
			Help: "Total number of most-recent-value cache misses",
		},
	)

	// CacheErrors tracks store operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wb_mrv_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)
)
