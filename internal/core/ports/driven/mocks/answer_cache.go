package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// MockAnswerCache is an in-memory AnswerCache for testing.
// TTLs are recorded but not enforced.
type MockAnswerCache struct {
	mu      sync.RWMutex
	answers map[string]*domain.Answer
	ttls    map[string]time.Duration
}

// NewMockAnswerCache creates a new MockAnswerCache
func NewMockAnswerCache() *MockAnswerCache {
	return &MockAnswerCache{
		answers: make(map[string]*domain.Answer),
		ttls:    make(map[string]time.Duration),
	}
}

// Count returns the number of cached answers
func (m *MockAnswerCache) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.answers)
}

// TTL returns the TTL recorded for a key
func (m *MockAnswerCache) TTL(key string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ttls[key]
}

func (m *MockAnswerCache) Get(ctx context.Context, key string) (*domain.Answer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	answer, ok := m.answers[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return answer, nil
}

func (m *MockAnswerCache) Set(ctx context.Context, key string, answer *domain.Answer, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.answers[key] = answer
	m.ttls[key] = ttl
	return nil
}
