package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// MockGenerator is a mock implementation of Generator for testing
type MockGenerator struct {
	mu       sync.Mutex
	answer   string
	fail     bool
	lastReq  *domain.GenerationRequest
	genCalls int
}

// NewMockGenerator creates a new MockGenerator
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		answer: "mock generated answer",
	}
}

// SetAnswer configures the generated answer text
func (m *MockGenerator) SetAnswer(answer string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answer = answer
}

// SetFail makes GenerateAnswer fail with ErrServiceUnavailable
func (m *MockGenerator) SetFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

// LastRequest returns the most recent generation request
func (m *MockGenerator) LastRequest() *domain.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReq
}

// Calls returns how many generation calls were made
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.genCalls
}

func (m *MockGenerator) GenerateAnswer(ctx context.Context, req domain.GenerationRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.genCalls++
	m.lastReq = &req

	if m.fail {
		return "", fmt.Errorf("mock generate: %w", domain.ErrServiceUnavailable)
	}
	return m.answer, nil
}

func (m *MockGenerator) Model() string {
	return "mock-generator-model"
}

func (m *MockGenerator) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("mock ping: %w", domain.ErrServiceUnavailable)
	}
	return nil
}

func (m *MockGenerator) Close() error {
	return nil
}
