package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// MockClassifier is a mock implementation of Classifier for testing
type MockClassifier struct {
	mu           sync.Mutex
	decision     *domain.RouteDecision
	places       []string
	failClassify bool
	failExtract  bool

	classifyCalls int
	extractCalls  int
}

// NewMockClassifier creates a new MockClassifier defaulting to document_only
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{
		decision: &domain.RouteDecision{
			Route:      domain.RouteDocumentOnly,
			Confidence: 0.8,
			Reasoning:  "mock classification",
		},
	}
}

// SetDecision configures the classification result
func (m *MockClassifier) SetDecision(d *domain.RouteDecision) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decision = d
}

// SetPlaces configures the place extraction result
func (m *MockClassifier) SetPlaces(places []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.places = places
}

// SetFailClassify makes Classify fail with ErrClassificationUnavailable
func (m *MockClassifier) SetFailClassify(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failClassify = fail
}

// SetFailExtract makes ExtractPlaces fail with ErrClassificationUnavailable
func (m *MockClassifier) SetFailExtract(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failExtract = fail
}

// Calls returns the (classify, extract) call counts
func (m *MockClassifier) Calls() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.classifyCalls, m.extractCalls
}

func (m *MockClassifier) Classify(ctx context.Context, query string) (*domain.RouteDecision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classifyCalls++

	if m.failClassify {
		return nil, fmt.Errorf("mock classify: %w", domain.ErrClassificationUnavailable)
	}
	return m.decision, nil
}

func (m *MockClassifier) ExtractPlaces(ctx context.Context, text string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extractCalls++

	if m.failExtract {
		return nil, fmt.Errorf("mock extract: %w", domain.ErrClassificationUnavailable)
	}
	return m.places, nil
}
