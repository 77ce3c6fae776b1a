package domain

import (
	"fmt"
	"time"
)

// WeatherReport is the current-conditions snapshot for one place
type WeatherReport struct {
	City          string    `json:"city"`
	Temperature   float64   `json:"temperature"` // Celsius
	FeelsLike     float64   `json:"feels_like"`
	Conditions    string    `json:"conditions"`
	Humidity      int       `json:"humidity"` // percent
	WindSpeed     float64   `json:"wind_speed"`
	WindDirection int       `json:"wind_direction"` // degrees
	FetchedAt     time.Time `json:"fetched_at"`
}

// Summary renders the report as a single context line for generation
func (w *WeatherReport) Summary() string {
	return fmt.Sprintf("%s: %.1f°C (feels like %.1f°C), %s, Humidity: %d%%, Wind: %.1f m/s",
		w.City, w.Temperature, w.FeelsLike, w.Conditions, w.Humidity, w.WindSpeed)
}
