package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// AnswerCache stores assembled answers keyed by a normalized query hash.
// Caching is best-effort: a miss or a cache failure never fails a query.
type AnswerCache interface {
	// Get retrieves a cached answer.
	// Returns domain.ErrNotFound on a miss.
	Get(ctx context.Context, key string) (*domain.Answer, error)

	// Set stores an answer with the given TTL
	Set(ctx context.Context, key string, answer *domain.Answer, ttl time.Duration) error
}
