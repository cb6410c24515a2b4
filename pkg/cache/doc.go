// Package cache provides thread-safe caching implementations with
// multiple eviction policies, built-in statistics tracking, and optional
// Prometheus metrics integration. In this module it backs the ruleset
// loader's compiled-regex cache; it is generic and usable for any
// string-keyed value.
//
// # Overview
//
// Four cache implementations with different eviction strategies:
//   - Simple: No eviction (manual cleanup only)
//   - LRU: Least Recently Used eviction
//   - TTL: Time-To-Live expiration
//   - Hybrid: Combines LRU and TTL policies
//
// All implementations are generic, thread-safe, and provide observability
// through always-on statistics and optional metrics.
//
// # Quick Start
//
// Simple cache creation:
//
//	cache := cache.NewSimple[string]()
//	cache.Set("key", "value")
//	value, ok := cache.Get("key")
//
// LRU cache with capacity limit, as the ruleset loader uses for compiled
// regular expressions:
//
//	regexes, err := cache.NewLRU[*regexp.Regexp](256)
//	if err != nil {
//		log.Fatal(err)
//	}
//
// TTL cache with expiration:
//
//	sessions, err := cache.NewTTL[*Session](ctx, 30*time.Minute, 5*time.Minute)
//
// Hybrid cache with both LRU and TTL:
//
//	results, err := cache.NewHybrid[[]byte](ctx, 5000, 10*time.Minute, 1*time.Minute,
//		cache.WithMetrics[[]byte](registry, "result_cache"),
//		cache.WithEvictionCallback[[]byte](func(key string, value []byte) {
//			log.Printf("Evicted: %s", key)
//		}),
//	)
//
// # Cache Types and Eviction Policies
//
// Simple: items remain until explicitly deleted or the cache is cleared.
// Best for small, stable datasets where manual control is desired.
//
// LRU: evicts least recently used items when maximum capacity is reached.
// Best for fixed-size caches where recent access indicates importance.
//
// TTL: items expire after a time-to-live period; a background cleanup
// goroutine removes expired items. Best for time-sensitive data.
//
// Hybrid: items are evicted if they are either least recently used OR
// expired. Best for caches requiring both size and time limits.
//
// # Observability
//
// Statistics are always on: all operations are tracked with atomic
// counters and exposed via cache.Stats(), including computed values like
// hit ratio. Prometheus metrics are optional, enabled with WithMetrics,
// and export to the module's shared registry with component labels.
//
// Both track operations independently. Statistics work without any
// Prometheus infrastructure (debugging, tests, local runs) and are about
// an order of magnitude faster to read than Prometheus collectors;
// metrics feed time-series monitoring and alerting. The dual-tracking
// overhead is one extra atomic increment per operation.
//
// # Thread Safety
//
// All cache operations are safe for concurrent use:
//   - Reads share an RWMutex; writes are serialized
//   - Statistics use atomic operations (lock-free)
//   - TTL cleanup runs in a background goroutine
//   - Eviction callbacks are called outside locks to prevent deadlocks
//
// # Context and Cleanup
//
// TTL and Hybrid caches run background cleanup goroutines. Pass a
// context that is canceled when cleanup should stop:
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	c, _ := cache.NewTTL[V](ctx, ttl, cleanupInterval)
//
// Simple and LRU caches create no background goroutines.
package cache
