package driven

import (
	"context"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// ChunkStore resolves chunk entities from the externally ingested
// hierarchy. The store is read-only from the core's perspective.
type ChunkStore interface {
	// Get retrieves a chunk by id, including its parent window.
	// Returns domain.ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (*domain.Chunk, error)

	// GetMany retrieves chunks for the given ids, preserving input order.
	// Unknown ids are omitted from the result, not errors.
	GetMany(ctx context.Context, ids []string) ([]*domain.Chunk, error)

	// Children retrieves a chunk's direct children in stored order
	Children(ctx context.Context, id string) ([]*domain.Chunk, error)
}
