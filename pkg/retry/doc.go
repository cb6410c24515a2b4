// Package retry provides simple exponential backoff retry logic for transient failures.
//
// # Overview
//
// This package offers a minimal retry mechanism with exponential backoff, designed to
// handle transient failures in messaging and storage operations around the matching
// engine (the engine itself never retries anything).
//
// # Core Functions
//
//   - Do: Execute function with retry and exponential backoff
//   - DoWithResult: Execute function with retry, returns both result and error
//
// # Configuration Presets
//
//   - DefaultConfig(): 3 attempts, 100ms-5s delay (normal operations)
//   - Quick(): 10 attempts, 50ms-1s delay (component startup)
//   - Persistent(): 30 attempts, 200ms-10s delay (critical resources)
//
// # Usage Examples
//
// Basic retry with defaults:
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
//	    return conn.Publish(subject, data)
//	})
//
// Retry only classified-transient errors:
//
//	cfg := retry.DefaultConfig()
//	cfg.RetryIf = errors.IsTransient
//	err := retry.Do(ctx, cfg, func() error {
//	    return store.Save(ctx, record)
//	})
//
// Retry with result:
//
//	db, err := retry.DoWithResult(ctx, retry.Quick(), func() (*sql.DB, error) {
//	    return store.Open(dsn)
//	})
//
// # Design Philosophy
//
// This package is intentionally minimal:
//
//   - No circuit breakers
//   - No metrics collection (instrument at the call site)
//   - Error classification stays with the caller, injected through RetryIf
//   - Just exponential backoff with jitter
//
// # Context Cancellation
//
// All retry operations respect context cancellation and stop retrying when the
// context is cancelled, either during operation execution or during backoff delay.
//
// # Thread Safety
//
// All functions are safe for concurrent use. The jitter mechanism uses a
// thread-safe random source to avoid contention.
package retry
