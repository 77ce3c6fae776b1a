package driven

import (
	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// AIServiceFactory creates AI services from stored provider credentials
type AIServiceFactory interface {
	// CreateEmbeddingService creates an embedding service.
	// Returns (nil, nil) when the credential is not configured.
	CreateEmbeddingService(cred *domain.ProviderCredential) (EmbeddingService, error)

	// CreateChatService creates the classifier/generator pair backed by
	// one chat-completion client.
	// Returns (nil, nil, nil) when the credential is not configured.
	CreateChatService(cred *domain.ProviderCredential) (Classifier, Generator, error)
}
