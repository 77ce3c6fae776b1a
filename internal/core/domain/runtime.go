package domain

import "sync"

// RuntimeConfig tracks which external capabilities are available.
// This is determined at startup and updated when AI or weather services
// are reconfigured. Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	CacheBackend string // "redis" or "none"

	// Dynamic capability flags (updated when services change)
	embeddingAvailable bool
	llmAvailable       bool
	weatherAvailable   bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(cacheBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		CacheBackend: cacheBackend,
	}
}

// EmbeddingAvailable returns whether the embedding capability is available
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// LLMAvailable returns whether classification/generation is available
func (c *RuntimeConfig) LLMAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llmAvailable
}

// WeatherAvailable returns whether the weather capability is available
func (c *RuntimeConfig) WeatherAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.weatherAvailable
}

// SetEmbeddingAvailable updates the embedding availability flag
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// SetLLMAvailable updates the LLM availability flag
func (c *RuntimeConfig) SetLLMAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.llmAvailable = available
}

// SetWeatherAvailable updates the weather availability flag
func (c *RuntimeConfig) SetWeatherAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.weatherAvailable = available
}

// CanDoDenseSearch returns true if the dense branch can run
func (c *RuntimeConfig) CanDoDenseSearch() bool {
	return c.EmbeddingAvailable()
}

// CanClassify returns true if LLM-based routing is possible
func (c *RuntimeConfig) CanClassify() bool {
	return c.LLMAvailable()
}
