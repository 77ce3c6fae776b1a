package driving

import (
	"context"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// QueryService is the core's single entry point for question answering.
// ProcessQuery always returns a populated answer: every failure mode is
// reported through the answer's degraded/timeout indicators and reasoning
// text, never as an error to the caller.
type QueryService interface {
	ProcessQuery(ctx context.Context, query string, opts domain.QueryOptions) *domain.Answer
}
