package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// MockSearchIndex is a mock implementation of SearchIndex for testing.
// Hits are configured per branch and returned in the configured order.
type MockSearchIndex struct {
	mu        sync.RWMutex
	denseHits []domain.IndexHit
	bm25Hits  []domain.IndexHit
	failDense bool
	failBM25  bool

	knnCalls  int
	bm25Calls int
}

// NewMockSearchIndex creates a new MockSearchIndex
func NewMockSearchIndex() *MockSearchIndex {
	return &MockSearchIndex{}
}

// SetDenseHits configures the dense branch results
func (m *MockSearchIndex) SetDenseHits(hits []domain.IndexHit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denseHits = hits
}

// SetBM25Hits configures the keyword branch results
func (m *MockSearchIndex) SetBM25Hits(hits []domain.IndexHit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bm25Hits = hits
}

// SetFailDense makes KNNSearch fail with ErrIndexUnavailable
func (m *MockSearchIndex) SetFailDense(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failDense = fail
}

// SetFailBM25 makes BM25Search fail with ErrIndexUnavailable
func (m *MockSearchIndex) SetFailBM25(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failBM25 = fail
}

// Calls returns the (knn, bm25) call counts
func (m *MockSearchIndex) Calls() (int, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.knnCalls, m.bm25Calls
}

func (m *MockSearchIndex) KNNSearch(ctx context.Context, vector []float32, filters domain.IndexFilters, k int) ([]domain.IndexHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.knnCalls++

	if m.failDense {
		return nil, fmt.Errorf("mock knn: %w", domain.ErrIndexUnavailable)
	}
	return truncateHits(m.denseHits, k), nil
}

func (m *MockSearchIndex) BM25Search(ctx context.Context, text string, filters domain.IndexFilters, k int) ([]domain.IndexHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bm25Calls++

	if m.failBM25 {
		return nil, fmt.Errorf("mock bm25: %w", domain.ErrIndexUnavailable)
	}
	return truncateHits(m.bm25Hits, k), nil
}

func (m *MockSearchIndex) HealthCheck(ctx context.Context) error {
	return nil
}

func truncateHits(hits []domain.IndexHit, k int) []domain.IndexHit {
	if len(hits) > k {
		hits = hits[:k]
	}
	out := make([]domain.IndexHit, len(hits))
	copy(out, hits)
	return out
}
