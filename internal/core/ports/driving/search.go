package driving

import (
	"context"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// SearchService runs hybrid dense+keyword retrieval
type SearchService interface {
	// Search executes both retrieval branches and fuses their results.
	// A fresh call re-executes both sub-searches.
	Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResultSet, error)
}
