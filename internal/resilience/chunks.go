package resilience

import (
	"context"
	"fmt"
	"time"

	"storesync/pkg/logging"
)

const (
	// DefaultChunkSize is the number of items sent per batch call.
	DefaultChunkSize = 10

	// DefaultChunkDelay is the pause between consecutive chunks.
	DefaultChunkDelay = 500 * time.Millisecond
)

// ChunkOptions configures ProcessInChunks. Zero values fall back to the
// defaults above. Limiter, when set, stretches the inter-chunk delay while
// rate limiting is being observed.
type ChunkOptions struct {
	ChunkSize int
	Delay     time.Duration
	Limiter   *AdaptiveRateLimiter
}

// BatchFunc processes one chunk of items in a single remote call. It
// returns either one result per item (positional) or a single result for
// the whole chunk.
type BatchFunc[T, R any] func(ctx context.Context, chunk []T) ([]R, error)

// ItemResult pairs an input item with its per-item result.
type ItemResult[T, R any] struct {
	Item   T
	Result R
}

// ItemFailure pairs an input item with the error that applied to it.
type ItemFailure[T any] struct {
	Item T
	Err  error
}

// ChunkedResult is the aggregate outcome of a chunked batch run. Every item
// of every processed chunk lands in exactly one of Successes or Failures.
type ChunkedResult[T, R any] struct {
	Successes       []ItemResult[T, R]
	Failures        []ItemFailure[T]
	ChunksProcessed int
}

// SplitIntoChunks splits items into ceil(len/size) chunks preserving order;
// the last chunk may be smaller. Chunks share the backing array of items.
func SplitIntoChunks[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}

// ProcessInChunks drives items through batch in fixed-size chunks.
//
// Chunks run strictly sequentially; bulk mutation endpoints are the most
// rate-limit-sensitive path, so chunk-level concurrency is deliberately off
// even though individually dispatched operations elsewhere run under the
// ConcurrencyController. Between non-final chunks the processor sleeps the
// configured delay, stretched by the adaptive limiter when one is attached.
//
// One chunk's failure never aborts later chunks: on a batch error every
// item of that chunk is recorded as failed with the same error and
// processing moves on. A result slice must either match the chunk length
// (positional mapping) or contain exactly one element (applied to every
// item); any other length fails the chunk. Cancellation stops before the
// next chunk and returns the partial result together with ctx.Err().
func ProcessInChunks[T, R any](ctx context.Context, items []T, batch BatchFunc[T, R], opts ChunkOptions) (ChunkedResult[T, R], error) {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultChunkDelay
	}

	var result ChunkedResult[T, R]
	chunks := SplitIntoChunks(items, opts.ChunkSize)

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if i > 0 {
			delay := opts.Delay
			if opts.Limiter != nil {
				delay = opts.Limiter.AdaptiveDelay(delay)
			}
			if err := sleepContext(ctx, delay); err != nil {
				return result, err
			}
		}

		results, err := batch(ctx, chunk)
		result.ChunksProcessed++

		if err == nil && len(results) != len(chunk) && len(results) != 1 {
			err = fmt.Errorf("batch returned %d results for a chunk of %d items", len(results), len(chunk))
		}
		if err != nil {
			logging.Warn("ChunkProcessor", "Chunk %d/%d failed (%d items): %v", i+1, len(chunks), len(chunk), err)
			for _, item := range chunk {
				result.Failures = append(result.Failures, ItemFailure[T]{Item: item, Err: err})
			}
			continue
		}

		for j, item := range chunk {
			r := results[0]
			if len(results) == len(chunk) {
				r = results[j]
			}
			result.Successes = append(result.Successes, ItemResult[T, R]{Item: item, Result: r})
		}
	}

	return result, nil
}
