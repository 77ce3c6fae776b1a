package ai

import (
	"errors"
	"testing"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

func TestFactory_CreateEmbeddingService(t *testing.T) {
	f := NewFactory()

	svc, err := f.CreateEmbeddingService(&domain.ProviderCredential{
		Provider: "openai",
		APIKey:   "sk-test",
		Model:    "text-embedding-3-small",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc == nil {
		t.Fatal("expected a service")
	}
	if svc.Model() != "text-embedding-3-small" {
		t.Errorf("unexpected model %s", svc.Model())
	}
}

func TestFactory_CreateEmbeddingService_Unconfigured(t *testing.T) {
	f := NewFactory()

	for _, cred := range []*domain.ProviderCredential{
		nil,
		{},
		{Provider: "openai"}, // no key
	} {
		svc, err := f.CreateEmbeddingService(cred)
		if err != nil {
			t.Errorf("cred %+v: unexpected error %v", cred, err)
		}
		if svc != nil {
			t.Errorf("cred %+v: expected nil service", cred)
		}
	}
}

func TestFactory_CreateEmbeddingService_UnknownProvider(t *testing.T) {
	f := NewFactory()

	_, err := f.CreateEmbeddingService(&domain.ProviderCredential{
		Provider: "acme-ai",
		APIKey:   "key",
	})
	if !errors.Is(err, domain.ErrInvalidProvider) {
		t.Errorf("expected ErrInvalidProvider, got %v", err)
	}
}

func TestFactory_CreateChatService(t *testing.T) {
	f := NewFactory()

	classifier, generator, err := f.CreateChatService(&domain.ProviderCredential{
		Provider: "openai",
		APIKey:   "sk-test",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if classifier == nil || generator == nil {
		t.Fatal("expected both chat services")
	}

	// One client backs both roles
	if classifier.(*OpenAIChat) != generator.(*OpenAIChat) {
		t.Error("classifier and generator must share the chat client")
	}
}

func TestFactory_CreateChatService_UnknownProvider(t *testing.T) {
	f := NewFactory()

	_, _, err := f.CreateChatService(&domain.ProviderCredential{
		Provider: "acme-ai",
		APIKey:   "key",
	})
	if !errors.Is(err, domain.ErrInvalidProvider) {
		t.Errorf("expected ErrInvalidProvider, got %v", err)
	}
}
