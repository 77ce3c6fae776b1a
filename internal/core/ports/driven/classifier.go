package driven

import (
	"context"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// Classifier maps a raw query onto a route decision and extracts place
// names for the weather branch. Classification is the only nondeterministic
// step in the workflow; callers validate the returned route.
type Classifier interface {
	// Classify determines the query's intent.
	// Fails with domain.ErrClassificationUnavailable when the capability
	// cannot be reached; callers fall back to out_of_scope.
	Classify(ctx context.Context, query string) (*domain.RouteDecision, error)

	// ExtractPlaces pulls place names out of free text.
	// An empty slice with a nil error means no places were mentioned.
	ExtractPlaces(ctx context.Context, text string) ([]string, error)
}
