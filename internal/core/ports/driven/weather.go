package driven

import (
	"context"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// WeatherService fetches current conditions for a place.
type WeatherService interface {
	// Current fetches the current weather for a place name.
	// Fails with domain.ErrLocationUnresolved when the place is unknown
	// and domain.ErrWeatherUnavailable when the provider cannot be reached.
	Current(ctx context.Context, place string) (*domain.WeatherReport, error)

	// HealthCheck verifies the weather provider is reachable
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the service
	Close() error
}
