package tokens

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// defaultEncoding matches the tokenizer used at ingestion time, so token
// counts stay comparable between the index and the compression budget.
const defaultEncoding = "cl100k_base"

// Counter counts tokens with a tiktoken encoding, falling back to a
// bytes/4 estimate when the encoding cannot be loaded.
type Counter struct {
	mu           sync.RWMutex
	encodingName string
	tke          *tiktoken.Tiktoken
}

// NewCounter creates a counter for the given encoding name.
// An empty name selects cl100k_base.
func NewCounter(encoding string) (*Counter, error) {
	if encoding == "" {
		encoding = defaultEncoding
	}

	tke, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		if encoding == defaultEncoding {
			return nil, fmt.Errorf("failed to get encoding %s: %w", encoding, err)
		}
		tke, err = tiktoken.GetEncoding(defaultEncoding)
		if err != nil {
			return nil, fmt.Errorf("failed to get default encoding: %w", err)
		}
		encoding = defaultEncoding
	}

	return &Counter{
		encodingName: encoding,
		tke:          tke,
	}, nil
}

// NewEstimateCounter creates a counter that only uses the bytes/4 estimate.
// Useful in tests and when the encoding files are unavailable offline.
func NewEstimateCounter() *Counter {
	return &Counter{encodingName: "estimate"}
}

// Count returns the number of tokens in text
func (c *Counter) Count(text string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.tke == nil {
		return Estimate(text)
	}
	return len(c.tke.Encode(text, nil, nil))
}

// Encoding returns the name of the encoding in use
func (c *Counter) Encoding() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.encodingName
}

// Estimate approximates a token count as len/4, the rule of thumb for
// English prose under cl100k_base.
func Estimate(text string) int {
	return len(text) / 4
}
