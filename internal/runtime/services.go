package runtime

import (
	"context"
	"sync"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
	"github.com/custodia-labs/wayfarer-core/internal/core/ports/driven"
)

// Services holds references to dynamically configurable capabilities.
// The AI services (embedding, classifier/generator) and the weather
// provider can be swapped at runtime via the settings API.
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	// Config tracks capability flags
	config *domain.RuntimeConfig

	// Dynamic services (can be nil, updated at runtime)
	embeddingService driven.EmbeddingService
	classifier       driven.Classifier
	generator        driven.Generator
	weatherService   driven.WeatherService
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// EmbeddingService returns the current embedding service (may be nil)
func (s *Services) EmbeddingService() driven.EmbeddingService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embeddingService
}

// Classifier returns the current classifier (may be nil)
func (s *Services) Classifier() driven.Classifier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.classifier
}

// Generator returns the current generator (may be nil)
func (s *Services) Generator() driven.Generator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generator
}

// WeatherService returns the current weather service (may be nil)
func (s *Services) WeatherService() driven.WeatherService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weatherService
}

// SetEmbeddingService updates the embedding service.
// Closes the old service if present. Updates config flags.
func (s *Services) SetEmbeddingService(svc driven.EmbeddingService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
	}

	s.embeddingService = svc
	s.config.SetEmbeddingAvailable(svc != nil)
}

// SetChatServices updates the classifier/generator pair.
// They are backed by one chat client, so they swap together.
// Closes the old generator if present. Updates config flags.
func (s *Services) SetChatServices(classifier driven.Classifier, generator driven.Generator) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generator != nil {
		_ = s.generator.Close()
	}

	s.classifier = classifier
	s.generator = generator
	s.config.SetLLMAvailable(classifier != nil && generator != nil)
}

// SetWeatherService updates the weather service.
// Closes the old service if present. Updates config flags.
func (s *Services) SetWeatherService(svc driven.WeatherService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.weatherService != nil {
		_ = s.weatherService.Close()
	}

	s.weatherService = svc
	s.config.SetWeatherAvailable(svc != nil)
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
		s.embeddingService = nil
	}
	if s.generator != nil {
		_ = s.generator.Close()
		s.generator = nil
	}
	s.classifier = nil
	if s.weatherService != nil {
		_ = s.weatherService.Close()
		s.weatherService = nil
	}

	s.config.SetEmbeddingAvailable(false)
	s.config.SetLLMAvailable(false)
	s.config.SetWeatherAvailable(false)

	return nil
}

// ValidateAndSetEmbedding validates connectivity before setting the
// embedding service
func (s *Services) ValidateAndSetEmbedding(ctx context.Context, svc driven.EmbeddingService) error {
	if svc == nil {
		s.SetEmbeddingService(nil)
		return nil
	}

	if err := svc.HealthCheck(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetEmbeddingService(svc)
	return nil
}

// ValidateAndSetChat validates connectivity before setting the
// classifier/generator pair
func (s *Services) ValidateAndSetChat(ctx context.Context, classifier driven.Classifier, generator driven.Generator) error {
	if classifier == nil || generator == nil {
		s.SetChatServices(nil, nil)
		return nil
	}

	if err := generator.Ping(ctx); err != nil {
		_ = generator.Close()
		return err
	}

	s.SetChatServices(classifier, generator)
	return nil
}

// ValidateAndSetWeather validates connectivity before setting the weather
// service
func (s *Services) ValidateAndSetWeather(ctx context.Context, svc driven.WeatherService) error {
	if svc == nil {
		s.SetWeatherService(nil)
		return nil
	}

	if err := svc.HealthCheck(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetWeatherService(svc)
	return nil
}
