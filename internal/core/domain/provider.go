package domain

import "time"

// AIProvider identifies an AI service provider
type AIProvider string

const (
	AIProviderOpenAI AIProvider = "openai"
)

// ProviderCredential holds the stored configuration for one external
// provider (AI or weather). The API key is encrypted at rest.
type ProviderCredential struct {
	Provider  string    `json:"provider"` // "openai", "openweather"
	APIKey    string    `json:"-"`        // never serialize
	BaseURL   string    `json:"base_url,omitempty"`
	Model     string    `json:"model,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsConfigured reports whether the credential can be used
func (p *ProviderCredential) IsConfigured() bool {
	return p != nil && p.Provider != "" && p.APIKey != ""
}

// GenerationRequest carries the merged branch context into answer generation
type GenerationRequest struct {
	Query           string
	Route           Route
	DocumentContext string
	WeatherContext  string
}
