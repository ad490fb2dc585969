// Package resilience is the adaptive execution layer that lets storesync
// apply remote operations against an unreliable, rate-limited API.
//
// # Components
//
//   - Classify: maps opaque failures onto a closed set of error kinds
//     (rate-limit, network, graphql, validation, unknown)
//   - AdaptiveRateLimiter: tracks recent rate-limit occurrences and
//     server Retry-After hints, computing the delay before the next attempt
//   - ConcurrencyController: bounds in-flight operations, shrinking hard on
//     rate limits and growing back slowly on success
//   - RetryExecutor: bounded attempts with jittered exponential backoff
//   - ProcessInChunks: sequential fixed-size batches with per-chunk failure
//     isolation
//   - Tracker: per-stage counters for post-run reporting
//
// # Composition
//
// Context bundles all of the above for one command invocation:
//
//	rc := resilience.NewContext(resilience.Options{})
//	err := rc.Execute(ctx, func(ctx context.Context) error {
//	    return client.Do(ctx, query, vars, &out)
//	})
//
// Execute admits the operation through the concurrency gate first, then
// retries run inside the admitted slot, so a retrying operation never holds
// more than one slot. Rate-limit feedback flows from the classifier into
// both the limiter (longer delays) and the controller (narrower gate).
//
// All components are safe for concurrent use; nothing in this package is a
// process-wide singleton.
package resilience
