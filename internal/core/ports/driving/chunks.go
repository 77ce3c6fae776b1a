package driving

import (
	"context"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// ChunkService resolves chunks and their hierarchy with integrity checks.
// Broken parent/child links surface as domain.ErrConsistency; they are
// never silently repaired.
type ChunkService interface {
	// Resolve retrieves a single chunk by id
	Resolve(ctx context.Context, id string) (*domain.Chunk, error)

	// Ancestors resolves the ancestor chain from the chunk up to the
	// requested level (inclusive), nearest ancestor first.
	Ancestors(ctx context.Context, id string, toLevel int) ([]*domain.Chunk, error)

	// ParentWindow resolves the text spanning the chunk's parent extent,
	// preferring the precomputed window.
	ParentWindow(ctx context.Context, id string) (string, error)
}
