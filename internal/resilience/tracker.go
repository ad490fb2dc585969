package resilience

import (
	"fmt"
	"sync"

	"storesync/pkg/logging"
)

// StageMetrics accumulates resilience counters for one named stage of a run.
type StageMetrics struct {
	RateLimitHits int `json:"rateLimitHits"`
	RetryAttempts int `json:"retryAttempts"`
	GraphQLErrors int `json:"graphqlErrors"`
	NetworkErrors int `json:"networkErrors"`
}

// Tracker accumulates StageMetrics per named stage for post-run reporting.
//
// At most one stage is active at a time; this is a single slot, not a stack.
// Starting a stage while another is active is an error; implicitly ending
// the previous stage would silently misattribute its remaining events.
// Record calls without an active stage are silently dropped, so deeply
// shared components never need to know whether a stage is in progress.
type Tracker struct {
	mu sync.Mutex

	activeName    string
	activeMetrics *StageMetrics
	stages        map[string]StageMetrics
	stageOrder    []string
}

// NewTracker creates an empty tracker with no active stage.
func NewTracker() *Tracker {
	return &Tracker{stages: make(map[string]StageMetrics)}
}

// StartStage makes name the active stage with zeroed metrics. It fails when
// a stage is already active.
func (t *Tracker) StartStage(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.activeMetrics != nil {
		return fmt.Errorf("stage %q is still active, end it before starting %q", t.activeName, name)
	}

	t.activeName = name
	t.activeMetrics = &StageMetrics{}
	logging.Debug("Tracker", "Stage started: %s", name)
	return nil
}

// EndStage stores the active stage's metrics under its name and returns a
// copy. The second return is false when no stage was active.
func (t *Tracker) EndStage() (StageMetrics, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.activeMetrics == nil {
		return StageMetrics{}, false
	}

	metrics := *t.activeMetrics
	if _, seen := t.stages[t.activeName]; !seen {
		t.stageOrder = append(t.stageOrder, t.activeName)
	}
	t.stages[t.activeName] = metrics
	logging.Debug("Tracker", "Stage ended: %s (%d rate limits, %d retries)",
		t.activeName, metrics.RateLimitHits, metrics.RetryAttempts)

	t.activeName = ""
	t.activeMetrics = nil
	return metrics, true
}

// RecordRateLimitHit increments the active stage's rate-limit counter.
func (t *Tracker) RecordRateLimitHit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.activeMetrics != nil {
		t.activeMetrics.RateLimitHits++
	}
}

// RecordRetryAttempt increments the active stage's retry counter.
func (t *Tracker) RecordRetryAttempt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.activeMetrics != nil {
		t.activeMetrics.RetryAttempts++
	}
}

// RecordErrorKind increments the counter matching a classified error kind.
// Kinds without a dedicated counter are ignored.
func (t *Tracker) RecordErrorKind(kind Kind) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.activeMetrics == nil {
		return
	}
	switch kind {
	case KindGraphQL:
		t.activeMetrics.GraphQLErrors++
	case KindNetwork:
		t.activeMetrics.NetworkErrors++
	}
}

// GetStageMetrics returns the stored metrics for a completed stage.
func (t *Tracker) GetStageMetrics(name string) (StageMetrics, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	metrics, ok := t.stages[name]
	return metrics, ok
}

// GetAllStageMetrics returns a copy of every completed stage's metrics.
func (t *Tracker) GetAllStageMetrics() map[string]StageMetrics {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]StageMetrics, len(t.stages))
	for name, metrics := range t.stages {
		out[name] = metrics
	}
	return out
}

// StageNames returns completed stage names in the order they first ended.
func (t *Tracker) StageNames() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, len(t.stageOrder))
	copy(out, t.stageOrder)
	return out
}

// Reset clears all stored stages and any active stage.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.activeName = ""
	t.activeMetrics = nil
	t.stages = make(map[string]StageMetrics)
	t.stageOrder = nil
}
