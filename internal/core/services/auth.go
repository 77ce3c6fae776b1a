package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
	"github.com/custodia-labs/wayfarer-core/internal/core/ports/driven"
	"github.com/custodia-labs/wayfarer-core/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// authService authenticates a single configured service client and issues
// short-lived JWTs for the API
type authService struct {
	adapter    driven.AuthAdapter
	clientID   string
	secretHash string
	tokenTTL   time.Duration
}

// NewAuthService creates a new AuthService for the configured client.
// The plaintext secret is hashed here and discarded.
func NewAuthService(adapter driven.AuthAdapter, clientID, clientSecret string, tokenTTL time.Duration) (driving.AuthService, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: client id and secret are required", domain.ErrInvalidInput)
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}

	hash, err := adapter.HashSecret(clientSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to hash client secret: %w", err)
	}

	return &authService{
		adapter:    adapter,
		clientID:   clientID,
		secretHash: hash,
		tokenTTL:   tokenTTL,
	}, nil
}

// IssueToken exchanges client credentials for a JWT
func (s *authService) IssueToken(_ context.Context, req domain.TokenRequest) (*domain.TokenResponse, error) {
	if req.ClientID != s.clientID || !s.adapter.VerifySecret(req.ClientSecret, s.secretHash) {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)
	token, err := s.adapter.GenerateToken(&domain.TokenClaims{
		ClientID:  req.ClientID,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &domain.TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// ValidateToken parses and validates a bearer token
func (s *authService) ValidateToken(_ context.Context, token string) (*domain.TokenClaims, error) {
	claims, err := s.adapter.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
	if claims.IsExpired() {
		return nil, domain.ErrTokenExpired
	}
	if claims.ClientID != s.clientID {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
