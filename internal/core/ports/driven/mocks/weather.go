package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// MockWeatherService is a mock implementation of WeatherService for testing
type MockWeatherService struct {
	mu      sync.Mutex
	reports map[string]*domain.WeatherReport
	fail    bool
	delay   time.Duration
	calls   int
}

// NewMockWeatherService creates a new MockWeatherService
func NewMockWeatherService() *MockWeatherService {
	return &MockWeatherService{
		reports: make(map[string]*domain.WeatherReport),
	}
}

// SetReport configures the report returned for a place
func (m *MockWeatherService) SetReport(place string, r *domain.WeatherReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[place] = r
}

// SetFail makes every lookup fail with ErrWeatherUnavailable
func (m *MockWeatherService) SetFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

// SetDelay makes every lookup block for d, honoring context cancellation
func (m *MockWeatherService) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Calls returns how many lookups were made
func (m *MockWeatherService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockWeatherService) Current(ctx context.Context, place string) (*domain.WeatherReport, error) {
	m.mu.Lock()
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.fail {
		return nil, fmt.Errorf("mock weather: %w", domain.ErrWeatherUnavailable)
	}

	if r, ok := m.reports[place]; ok {
		return r, nil
	}

	// Unknown places behave like the provider's 404
	return nil, fmt.Errorf("mock weather: %s: %w", place, domain.ErrLocationUnresolved)
}

func (m *MockWeatherService) HealthCheck(ctx context.Context) error {
	return nil
}

func (m *MockWeatherService) Close() error {
	return nil
}

// DefaultReport builds a plausible report for tests
func DefaultReport(city string) *domain.WeatherReport {
	return &domain.WeatherReport{
		City:        city,
		Temperature: 21.5,
		FeelsLike:   20.9,
		Conditions:  "clear sky",
		Humidity:    40,
		WindSpeed:   3.2,
		FetchedAt:   time.Now(),
	}
}
