package driven

import (
	"context"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// SearchIndex is the external vector/keyword index capability.
// Both searches return raw (chunk_id, score) hits with scores already
// normalized to 0..1; fusion happens in the core, not here.
type SearchIndex interface {
	// KNNSearch runs a k-nearest-neighbors query over leaf chunk embeddings
	KNNSearch(ctx context.Context, vector []float32, filters domain.IndexFilters, k int) ([]domain.IndexHit, error)

	// BM25Search runs a keyword term-matching query
	BM25Search(ctx context.Context, text string, filters domain.IndexFilters, k int) ([]domain.IndexHit, error)

	// HealthCheck verifies the index is reachable
	HealthCheck(ctx context.Context) error
}
