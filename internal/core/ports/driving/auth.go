package driving

import (
	"context"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// AuthService authenticates API clients
type AuthService interface {
	// IssueToken exchanges client credentials for a JWT
	IssueToken(ctx context.Context, req domain.TokenRequest) (*domain.TokenResponse, error)

	// ValidateToken parses and validates a bearer token
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}
