package driven

import (
	"context"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// Generator produces the final natural-language answer from the merged
// branch context. A generation failure degrades the answer, it never
// fails the query.
type Generator interface {
	// GenerateAnswer produces the answer text for the assembled context
	GenerateAnswer(ctx context.Context, req domain.GenerationRequest) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the generation service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the service
	Close() error
}
