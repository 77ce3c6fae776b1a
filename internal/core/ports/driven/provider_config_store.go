package driven

import (
	"context"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// ProviderConfigStore persists external provider credentials.
// API keys are encrypted at rest by the implementation.
type ProviderConfigStore interface {
	// SaveCredential creates or updates a provider credential
	SaveCredential(ctx context.Context, cred *domain.ProviderCredential) error

	// GetCredential retrieves a credential by provider name.
	// Returns domain.ErrNotFound when none is stored.
	GetCredential(ctx context.Context, provider string) (*domain.ProviderCredential, error)

	// DeleteCredential removes a stored credential
	DeleteCredential(ctx context.Context, provider string) error
}
