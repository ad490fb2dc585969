package resilience

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerStageLifecycle(t *testing.T) {
	tr := NewTracker()

	require.NoError(t, tr.StartStage("deploy channels"))
	tr.RecordRateLimitHit()
	tr.RecordRetryAttempt()
	tr.RecordRetryAttempt()
	tr.RecordErrorKind(KindNetwork)
	tr.RecordErrorKind(KindGraphQL)

	metrics, ok := tr.EndStage()
	require.True(t, ok)
	assert.Equal(t, StageMetrics{
		RateLimitHits: 1,
		RetryAttempts: 2,
		GraphQLErrors: 1,
		NetworkErrors: 1,
	}, metrics)

	stored, ok := tr.GetStageMetrics("deploy channels")
	require.True(t, ok)
	assert.Equal(t, metrics, stored)
}

func TestTrackerRejectsNestedStart(t *testing.T) {
	tr := NewTracker()

	require.NoError(t, tr.StartStage("first"))
	err := tr.StartStage("second")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"first"`)

	// The original stage is still intact.
	tr.RecordRateLimitHit()
	metrics, ok := tr.EndStage()
	require.True(t, ok)
	assert.Equal(t, 1, metrics.RateLimitHits)
}

func TestTrackerRecordsAreNoOpsWithoutStage(t *testing.T) {
	tr := NewTracker()

	// None of these may panic or leak into a later stage.
	tr.RecordRateLimitHit()
	tr.RecordRetryAttempt()
	tr.RecordErrorKind(KindNetwork)

	_, ok := tr.EndStage()
	assert.False(t, ok, "ending with no active stage reports false")

	require.NoError(t, tr.StartStage("fresh"))
	metrics, ok := tr.EndStage()
	require.True(t, ok)
	assert.Equal(t, StageMetrics{}, metrics)
}

func TestTrackerGetAllStageMetricsReturnsCopy(t *testing.T) {
	tr := NewTracker()

	require.NoError(t, tr.StartStage("a"))
	tr.RecordRateLimitHit()
	tr.EndStage()
	require.NoError(t, tr.StartStage("b"))
	tr.EndStage()

	all := tr.GetAllStageMetrics()
	assert.Len(t, all, 2)
	assert.Equal(t, []string{"a", "b"}, tr.StageNames())

	// Mutating the returned map must not affect the tracker.
	all["a"] = StageMetrics{RateLimitHits: 99}
	stored, _ := tr.GetStageMetrics("a")
	assert.Equal(t, 1, stored.RateLimitHits)
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker()

	require.NoError(t, tr.StartStage("a"))
	tr.EndStage()
	tr.Reset()

	assert.Empty(t, tr.GetAllStageMetrics())
	assert.Empty(t, tr.StageNames())
	require.NoError(t, tr.StartStage("a"), "reset clears any active stage slot")
}
