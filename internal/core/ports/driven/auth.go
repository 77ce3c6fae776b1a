package driven

import (
	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// AuthAdapter handles credential hashing and JWT operations
type AuthAdapter interface {
	// HashSecret generates a bcrypt hash from a plaintext secret
	HashSecret(secret string) (string, error)

	// VerifySecret checks if a secret matches a bcrypt hash
	VerifySecret(secret, hash string) bool

	// GenerateToken creates a signed JWT from domain claims
	GenerateToken(claims *domain.TokenClaims) (string, error)

	// ParseToken validates a JWT and extracts domain claims
	ParseToken(token string) (*domain.TokenClaims, error)
}
