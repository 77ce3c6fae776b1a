package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
	"github.com/custodia-labs/wayfarer-core/internal/core/ports/driven"
)

// Ensure ProviderConfigStore implements the interface.
var _ driven.ProviderConfigStore = (*ProviderConfigStore)(nil)

// ProviderConfigStore implements driven.ProviderConfigStore using
// PostgreSQL. API keys are encrypted with AES-256-GCM before they touch
// the database.
type ProviderConfigStore struct {
	db        *DB
	encryptor *SecretEncryptor
}

// NewProviderConfigStore creates a new PostgreSQL-backed credential store.
func NewProviderConfigStore(db *DB, encryptor *SecretEncryptor) *ProviderConfigStore {
	return &ProviderConfigStore{
		db:        db,
		encryptor: encryptor,
	}
}

// SaveCredential stores or updates a provider credential (upsert)
func (s *ProviderConfigStore) SaveCredential(ctx context.Context, cred *domain.ProviderCredential) error {
	if cred.Provider == "" {
		return fmt.Errorf("%w: provider name is required", domain.ErrInvalidInput)
	}

	keyBlob, err := s.encryptor.EncryptString(cred.APIKey)
	if err != nil {
		return fmt.Errorf("encrypt api key: %w", err)
	}

	query := `
		INSERT INTO provider_credentials (provider, api_key, base_url, model, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (provider) DO UPDATE SET
			api_key = EXCLUDED.api_key,
			base_url = EXCLUDED.base_url,
			model = EXCLUDED.model,
			updated_at = EXCLUDED.updated_at
	`

	cred.UpdatedAt = time.Now()
	_, err = s.db.ExecContext(ctx, query,
		cred.Provider,
		keyBlob,
		nullIfEmpty(cred.BaseURL),
		nullIfEmpty(cred.Model),
		cred.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save provider credential: %w", err)
	}

	return nil
}

// GetCredential retrieves a credential by provider name with the API key
// decrypted
func (s *ProviderConfigStore) GetCredential(ctx context.Context, provider string) (*domain.ProviderCredential, error) {
	query := `
		SELECT provider, api_key, COALESCE(base_url, ''), COALESCE(model, ''), updated_at
		FROM provider_credentials
		WHERE provider = $1
	`

	var cred domain.ProviderCredential
	var keyBlob []byte

	err := s.db.QueryRowContext(ctx, query, provider).Scan(
		&cred.Provider,
		&keyBlob,
		&cred.BaseURL,
		&cred.Model,
		&cred.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get provider credential: %w", err)
	}

	cred.APIKey, err = s.encryptor.DecryptString(keyBlob)
	if err != nil {
		return nil, fmt.Errorf("decrypt api key: %w", err)
	}

	return &cred, nil
}

// DeleteCredential removes a stored credential
func (s *ProviderConfigStore) DeleteCredential(ctx context.Context, provider string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM provider_credentials WHERE provider = $1", provider)
	if err != nil {
		return fmt.Errorf("delete provider credential: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
