// Package cache provides the most-recent-value lookup store.
//
// Resolving the special "mrv" query token requires one API round trip per
// (database, concept) pair to find the latest feature of that concept. The
// result is a single token string that rarely changes, so callers cache it
// behind the Store interface and invalidate explicitly when they switch
// databases or expect the concept to have advanced.
//
// Two backends are provided:
//
//   - MemoryStore: a mutex-guarded in-process map, the default.
//   - RedisStore: a Redis-backed store with TTL, for processes that share
//     resolution work.
//
// This store never caches HTTP responses; it holds resolved tokens only.
//
// # Basic Usage
//
//	store := cache.NewMemoryStore()
//
//	value, ok, err := store.Get(ctx, cache.Key{Database: 2, Concept: "time"})
//	if err != nil {
//		return err
//	}
//	if !ok {
//		value = resolveLatest(ctx)
//		if err := store.Set(ctx, cache.Key{Database: 2, Concept: "time"}, value); err != nil {
//			return err
//		}
//	}
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - wb_mrv_cache_hits_total{backend} - Store hits
//   - wb_mrv_cache_misses_total - Store misses
//   - wb_mrv_cache_errors_total{operation} - Store operation errors
package cache
