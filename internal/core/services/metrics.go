package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// metricsTracker accumulates per-query workflow metrics.
// One tracker is created per ProcessQuery call and discarded with it;
// branch goroutines share it, so it is safe for concurrent use.
type metricsTracker struct {
	mu       sync.Mutex
	traceID  string
	start    time.Time
	steps    []domain.StepMetric
	apiCalls int
}

func newMetricsTracker(traceID string) *metricsTracker {
	return &metricsTracker{
		traceID: traceID,
		start:   time.Now(),
	}
}

// step starts timing a workflow step. The returned func records the
// duration and outcome when called.
func (m *metricsTracker) step(name string) func(success bool) {
	start := time.Now()
	return func(success bool) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.steps = append(m.steps, domain.StepMetric{
			Name:       name,
			DurationMS: time.Since(start).Milliseconds(),
			Success:    success,
		})
	}
}

// addAPICall counts one external capability call
func (m *metricsTracker) addAPICall() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiCalls++
}

// addAPICalls counts n external capability calls
func (m *metricsTracker) addAPICalls(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiCalls += n
}

// finalize snapshots the accumulated metrics
func (m *metricsTracker) finalize() domain.WorkflowMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	successRate := 1.0
	if len(m.steps) > 0 {
		succeeded := 0
		for _, s := range m.steps {
			if s.Success {
				succeeded++
			}
		}
		successRate = float64(succeeded) / float64(len(m.steps))
	}

	steps := make([]domain.StepMetric, len(m.steps))
	copy(steps, m.steps)

	return domain.WorkflowMetrics{
		TraceID:     m.traceID,
		DurationMS:  time.Since(m.start).Milliseconds(),
		APICalls:    m.apiCalls,
		Steps:       steps,
		SuccessRate: successRate,
	}
}
