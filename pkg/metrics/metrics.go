// Package metrics provides the centralized Prometheus registry reference for
// the World Bank client. All metrics are defined in their respective packages
// (client, pagination, chunk, cache) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - wb_requests_total{status} (Counter): Total requests by HTTP status
//   - wb_request_duration_seconds (Histogram): Request duration
//   - wb_errors_total{class} (Counter): Errors by class (transport, decode, shape, server)
//
// Paging Metrics (pkg/pagination):
//   - wb_pages_fetched_total (Counter): Pages fetched across all queries
//   - wb_records_total (Counter): Records yielded across all queries
//
// Chunking Metrics (pkg/chunk):
//   - wb_url_chunks_total (Counter): Concrete URLs produced by the chunker
//
// Cache Metrics (pkg/cache):
//   - wb_mrv_cache_hits_total{backend} (Counter): Most-recent-value cache hits
//   - wb_mrv_cache_misses_total (Counter): Most-recent-value cache misses
//   - wb_mrv_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Request Error Rate
//   rate(wb_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(wb_request_duration_seconds_bucket[5m]))
//
//   # Average Records per Page
//   rate(wb_records_total[5m]) / rate(wb_pages_fetched_total[5m])
//
//   # MRV Cache Hit Rate
//   sum(rate(wb_mrv_cache_hits_total[5m])) /
//   (sum(rate(wb_mrv_cache_hits_total[5m])) + sum(rate(wb_mrv_cache_misses_total[5m])))
