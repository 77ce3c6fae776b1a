package ai

import (
	"fmt"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
	"github.com/custodia-labs/wayfarer-core/internal/core/ports/driven"
)

// Ensure Factory implements AIServiceFactory
var _ driven.AIServiceFactory = (*Factory)(nil)

// Factory creates AI services from stored provider credentials
type Factory struct{}

// NewFactory creates a new AI service factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateEmbeddingService creates an embedding service from a credential
func (f *Factory) CreateEmbeddingService(cred *domain.ProviderCredential) (driven.EmbeddingService, error) {
	if !cred.IsConfigured() {
		return nil, nil
	}

	switch domain.AIProvider(cred.Provider) {
	case domain.AIProviderOpenAI:
		return NewOpenAIEmbedding(cred.APIKey, cred.Model, cred.BaseURL)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, cred.Provider)
	}
}

// CreateChatService creates the classifier/generator pair backed by one
// chat client
func (f *Factory) CreateChatService(cred *domain.ProviderCredential) (driven.Classifier, driven.Generator, error) {
	if !cred.IsConfigured() {
		return nil, nil, nil
	}

	switch domain.AIProvider(cred.Provider) {
	case domain.AIProviderOpenAI:
		chat, err := NewOpenAIChat(cred.APIKey, cred.Model, cred.BaseURL)
		if err != nil {
			return nil, nil, err
		}
		return chat, chat, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, cred.Provider)
	}
}
