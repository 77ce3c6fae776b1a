package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
	"github.com/custodia-labs/wayfarer-core/internal/core/ports/driven"
	"github.com/custodia-labs/wayfarer-core/internal/core/ports/driving"
)

// Ensure chunkService implements ChunkService
var _ driving.ChunkService = (*chunkService)(nil)

// chunkService resolves chunks and walks the parent/child hierarchy,
// verifying bidirectional integrity on every traversed edge. Broken links
// are rejected with domain.ErrConsistency, never repaired.
type chunkService struct {
	store driven.ChunkStore
}

// NewChunkService creates a new ChunkService
func NewChunkService(store driven.ChunkStore) driving.ChunkService {
	return &chunkService{store: store}
}

// Resolve retrieves a single chunk by id
func (s *chunkService) Resolve(ctx context.Context, id string) (*domain.Chunk, error) {
	chunk, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", id, err)
	}
	return chunk, nil
}

// Ancestors resolves the chain of ancestors up to the requested level,
// nearest first. The chain stops early when the root is reached.
func (s *chunkService) Ancestors(ctx context.Context, id string, toLevel int) ([]*domain.Chunk, error) {
	current, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	var chain []*domain.Chunk
	for current.ParentID != "" && current.Level < toLevel {
		parent, err := s.store.Get(ctx, current.ParentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: chunk %s references missing parent %s",
					domain.ErrConsistency, current.ID, current.ParentID)
			}
			return nil, fmt.Errorf("parent of chunk %s: %w", current.ID, err)
		}
		if err := domain.VerifyLink(current, parent); err != nil {
			return nil, err
		}
		chain = append(chain, parent)
		current = parent
	}

	return chain, nil
}

// ParentWindow resolves the text spanning the chunk's parent extent.
// The precomputed window wins; otherwise the parent's text is used, and a
// root chunk falls back to its own text.
func (s *chunkService) ParentWindow(ctx context.Context, id string) (string, error) {
	chunk, err := s.Resolve(ctx, id)
	if err != nil {
		return "", err
	}

	if chunk.ParentWindow != "" {
		return chunk.ParentWindow, nil
	}
	if chunk.ParentID == "" {
		return chunk.Text, nil
	}

	parent, err := s.store.Get(ctx, chunk.ParentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("%w: chunk %s references missing parent %s",
				domain.ErrConsistency, chunk.ID, chunk.ParentID)
		}
		return "", fmt.Errorf("parent of chunk %s: %w", chunk.ID, err)
	}
	if err := domain.VerifyLink(chunk, parent); err != nil {
		return "", err
	}

	return parent.Text, nil
}
