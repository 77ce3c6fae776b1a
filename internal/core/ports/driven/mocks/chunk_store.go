package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// MockChunkStore is a mock implementation of ChunkStore for testing
type MockChunkStore struct {
	mu     sync.RWMutex
	chunks map[string]*domain.Chunk
}

// NewMockChunkStore creates a new MockChunkStore
func NewMockChunkStore() *MockChunkStore {
	return &MockChunkStore{
		chunks: make(map[string]*domain.Chunk),
	}
}

// Add stores chunks for later resolution
func (m *MockChunkStore) Add(chunks ...*domain.Chunk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range chunks {
		m.chunks[c.ID] = c
	}
}

// Reset clears all stored chunks
func (m *MockChunkStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = make(map[string]*domain.Chunk)
}

func (m *MockChunkStore) Get(ctx context.Context, id string) (*domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chunk, ok := m.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return chunk, nil
}

func (m *MockChunkStore) GetMany(ctx context.Context, ids []string) ([]*domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*domain.Chunk, 0, len(ids))
	for _, id := range ids {
		if chunk, ok := m.chunks[id]; ok {
			result = append(result, chunk)
		}
	}
	return result, nil
}

func (m *MockChunkStore) Children(ctx context.Context, id string) ([]*domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	parent, ok := m.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	children := make([]*domain.Chunk, 0, len(parent.ChildIDs))
	for _, childID := range parent.ChildIDs {
		if child, ok := m.chunks[childID]; ok {
			children = append(children, child)
		}
	}
	return children, nil
}
