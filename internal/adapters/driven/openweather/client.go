package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
	"github.com/custodia-labs/wayfarer-core/internal/core/ports/driven"
)

// Ensure Client implements WeatherService
var _ driven.WeatherService = (*Client)(nil)

const (
	defaultBaseURL = "https://api.openweathermap.org"
	currentPath    = "/data/2.5/weather"

	maxRetries  = 2
	backoffBase = 200 * time.Millisecond
)

// cityMappings disambiguates city names common in the indexed literature
var cityMappings = map[string]string{
	"rome":     "Rome, IT",
	"venice":   "Venice, IT",
	"florence": "Florence, IT",
	"milan":    "Milan, IT",
	"naples":   "Naples, IT",
	"paris":    "Paris, FR",
	"london":   "London, GB",
	"madrid":   "Madrid, ES",
	"berlin":   "Berlin, DE",
}

// Client implements WeatherService against the OpenWeatherMap current
// weather API. Transient failures (5xx, transport errors) are retried
// with exponential backoff; a 404 means the place could not be resolved
// and is not retried.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a new OpenWeatherMap client
func NewClient(apiKey, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenWeatherMap API key is required")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// currentResponse is the subset of the API response we consume
type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
}

// Current fetches current conditions for a place
func (c *Client) Current(ctx context.Context, place string) (*domain.WeatherReport, error) {
	city := cleanCityName(place)

	var report *domain.WeatherReport
	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(backoffBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := c.fetch(ctx, city)
		if err != nil {
			return err
		}
		report = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (c *Client) fetch(ctx context.Context, city string) (*domain.WeatherReport, error) {
	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", c.apiKey)
	query.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, "GET",
		c.baseURL+currentPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, retry.RetryableError(
			fmt.Errorf("request failed: %w: %v", domain.ErrWeatherUnavailable, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("unknown place %q: %w", city, domain.ErrLocationUnresolved)
	case resp.StatusCode >= 500:
		return nil, retry.RetryableError(
			fmt.Errorf("weather API returned status %d: %w", resp.StatusCode, domain.ErrWeatherUnavailable))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("weather API returned status %d: %w", resp.StatusCode, domain.ErrWeatherUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var data currentResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	report := &domain.WeatherReport{
		City:          data.Name,
		Temperature:   data.Main.Temp,
		FeelsLike:     data.Main.FeelsLike,
		Humidity:      data.Main.Humidity,
		WindSpeed:     data.Wind.Speed,
		WindDirection: data.Wind.Deg,
		FetchedAt:     time.Now(),
	}
	if report.City == "" {
		report.City = city
	}
	if len(data.Weather) > 0 {
		report.Conditions = data.Weather[0].Description
	}

	return report, nil
}

// HealthCheck verifies the weather API is reachable and the key is valid
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.fetch(ctx, "London, GB")
	return err
}

// Close releases resources held by the client
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// cleanCityName normalizes a place name for the API call
func cleanCityName(place string) string {
	city := strings.TrimSpace(place)
	if mapped, ok := cityMappings[strings.ToLower(city)]; ok {
		return mapped
	}
	return city
}
