package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitIntoChunks(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		chunkSize int
		expected  int
	}{
		{name: "empty input", length: 0, chunkSize: 3, expected: 0},
		{name: "single short chunk", length: 2, chunkSize: 10, expected: 1},
		{name: "exact multiple", length: 10, chunkSize: 5, expected: 2},
		{name: "remainder chunk", length: 11, chunkSize: 5, expected: 3},
		{name: "chunk size one", length: 4, chunkSize: 1, expected: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]int, tt.length)
			for i := range items {
				items[i] = i
			}

			chunks := SplitIntoChunks(items, tt.chunkSize)
			assert.Len(t, chunks, tt.expected)

			// Concatenating the chunks reproduces the original list.
			var flat []int
			for _, chunk := range chunks {
				assert.NotEmpty(t, chunk)
				assert.LessOrEqual(t, len(chunk), tt.chunkSize)
				flat = append(flat, chunk...)
			}
			assert.Equal(t, items, flat)
		})
	}
}

func TestProcessInChunksPositionalMapping(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	result, err := ProcessInChunks(context.Background(), items,
		func(ctx context.Context, chunk []string) ([]string, error) {
			out := make([]string, len(chunk))
			for i, item := range chunk {
				out[i] = item + "!"
			}
			return out, nil
		},
		ChunkOptions{ChunkSize: 2, Delay: 1})

	require.NoError(t, err)
	assert.Equal(t, 3, result.ChunksProcessed)
	assert.Empty(t, result.Failures)
	require.Len(t, result.Successes, 5)
	assert.Equal(t, "a", result.Successes[0].Item)
	assert.Equal(t, "a!", result.Successes[0].Result)
	assert.Equal(t, "e!", result.Successes[4].Result)
}

func TestProcessInChunksFailureIsolation(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6}
	boom := errors.New("bulk mutation failed")
	var processed [][]int

	result, err := ProcessInChunks(context.Background(), items,
		func(ctx context.Context, chunk []int) ([]int, error) {
			processed = append(processed, chunk)
			if chunk[0] == 3 {
				return nil, boom
			}
			return chunk, nil
		},
		ChunkOptions{ChunkSize: 2, Delay: 1})

	require.NoError(t, err)
	assert.Equal(t, 3, result.ChunksProcessed)
	assert.Len(t, result.Successes, 4)
	require.Len(t, result.Failures, 2)
	assert.ErrorIs(t, result.Failures[0].Err, boom)
	assert.Equal(t, 3, result.Failures[0].Item)
	assert.Equal(t, 4, result.Failures[1].Item)

	// The third chunk still ran despite the second chunk's failure.
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5, 6}}, processed)
}

func TestProcessInChunksSingleResultBroadcast(t *testing.T) {
	items := []string{"x", "y", "z"}

	result, err := ProcessInChunks(context.Background(), items,
		func(ctx context.Context, chunk []string) ([]string, error) {
			return []string{fmt.Sprintf("batch-of-%d", len(chunk))}, nil
		},
		ChunkOptions{ChunkSize: 3, Delay: 1})

	require.NoError(t, err)
	require.Len(t, result.Successes, 3)
	for _, s := range result.Successes {
		assert.Equal(t, "batch-of-3", s.Result)
	}
}

func TestProcessInChunksLengthMismatchFailsChunk(t *testing.T) {
	items := []int{1, 2, 3}

	result, err := ProcessInChunks(context.Background(), items,
		func(ctx context.Context, chunk []int) ([]int, error) {
			return []int{1, 2}, nil // two results for three items
		},
		ChunkOptions{ChunkSize: 3, Delay: 1})

	require.NoError(t, err)
	assert.Empty(t, result.Successes)
	require.Len(t, result.Failures, 3)
	assert.Contains(t, result.Failures[0].Err.Error(), "2 results for a chunk of 3")
}

func TestProcessInChunksSequentialOrder(t *testing.T) {
	items := make([]int, 30)
	for i := range items {
		items[i] = i
	}

	var order []int
	result, err := ProcessInChunks(context.Background(), items,
		func(ctx context.Context, chunk []int) ([]int, error) {
			order = append(order, chunk[0])
			return chunk, nil
		},
		ChunkOptions{ChunkSize: 10, Delay: 1})

	require.NoError(t, err)
	assert.Equal(t, []int{0, 10, 20}, order, "chunks run strictly in input order")
	assert.Len(t, result.Successes, 30)
}

func TestProcessInChunksStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	items := []int{1, 2, 3, 4}

	result, err := ProcessInChunks(ctx, items,
		func(ctx context.Context, chunk []int) ([]int, error) {
			cancel() // cancel during the first chunk
			return chunk, nil
		},
		ChunkOptions{ChunkSize: 2, Delay: 1})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, result.ChunksProcessed, "partial result is returned")
	assert.Len(t, result.Successes, 2)
}

func TestProcessInChunksAccountsForEveryItem(t *testing.T) {
	// successes + failures must equal the item count for every outcome mix.
	items := make([]int, 17)
	for i := range items {
		items[i] = i
	}

	result, err := ProcessInChunks(context.Background(), items,
		func(ctx context.Context, chunk []int) ([]int, error) {
			if chunk[0]%2 == 1 {
				return nil, errors.New("odd chunk")
			}
			return chunk, nil
		},
		ChunkOptions{ChunkSize: 5, Delay: 1})

	require.NoError(t, err)
	assert.Equal(t, 4, result.ChunksProcessed)
	assert.Equal(t, len(items), len(result.Successes)+len(result.Failures))
}
