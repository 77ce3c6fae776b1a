package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
	"github.com/custodia-labs/wayfarer-core/internal/core/ports/driven/mocks"
)

func TestServices_GettersDefaultNil(t *testing.T) {
	s := NewServices(domain.NewRuntimeConfig("none"))

	assert.Nil(t, s.EmbeddingService())
	assert.Nil(t, s.Classifier())
	assert.Nil(t, s.Generator())
	assert.Nil(t, s.WeatherService())

	assert.False(t, s.Config().EmbeddingAvailable())
	assert.False(t, s.Config().LLMAvailable())
	assert.False(t, s.Config().WeatherAvailable())
}

func TestServices_SetUpdatesFlags(t *testing.T) {
	s := NewServices(domain.NewRuntimeConfig("none"))

	s.SetEmbeddingService(mocks.NewMockEmbeddingService())
	assert.True(t, s.Config().EmbeddingAvailable())

	s.SetChatServices(mocks.NewMockClassifier(), mocks.NewMockGenerator())
	assert.True(t, s.Config().LLMAvailable())

	s.SetWeatherService(mocks.NewMockWeatherService())
	assert.True(t, s.Config().WeatherAvailable())

	// Clearing a capability clears its flag
	s.SetEmbeddingService(nil)
	assert.False(t, s.Config().EmbeddingAvailable())
	s.SetChatServices(nil, nil)
	assert.False(t, s.Config().LLMAvailable())
}

func TestServices_ChatServicesSwapTogether(t *testing.T) {
	s := NewServices(domain.NewRuntimeConfig("none"))

	// A classifier without a generator is not a usable LLM capability
	s.SetChatServices(mocks.NewMockClassifier(), nil)
	assert.False(t, s.Config().LLMAvailable())
}

func TestServices_ValidateAndSetEmbedding(t *testing.T) {
	s := NewServices(domain.NewRuntimeConfig("none"))

	healthy := mocks.NewMockEmbeddingService()
	require.NoError(t, s.ValidateAndSetEmbedding(context.Background(), healthy))
	require.NotNil(t, s.EmbeddingService())

	failing := mocks.NewMockEmbeddingService()
	failing.SetFailAlways(true)
	require.Error(t, s.ValidateAndSetEmbedding(context.Background(), failing))

	// The previous healthy service stays installed
	assert.Same(t, healthy, s.EmbeddingService().(*mocks.MockEmbeddingService))
}

func TestServices_ValidateAndSetChat(t *testing.T) {
	s := NewServices(domain.NewRuntimeConfig("none"))

	failing := mocks.NewMockGenerator()
	failing.SetFail(true)
	require.Error(t, s.ValidateAndSetChat(context.Background(), mocks.NewMockClassifier(), failing))
	assert.False(t, s.Config().LLMAvailable())

	require.NoError(t, s.ValidateAndSetChat(context.Background(), mocks.NewMockClassifier(), mocks.NewMockGenerator()))
	assert.True(t, s.Config().LLMAvailable())
}

func TestServices_Close(t *testing.T) {
	s := NewServices(domain.NewRuntimeConfig("none"))
	s.SetEmbeddingService(mocks.NewMockEmbeddingService())
	s.SetChatServices(mocks.NewMockClassifier(), mocks.NewMockGenerator())
	s.SetWeatherService(mocks.NewMockWeatherService())

	require.NoError(t, s.Close())

	assert.Nil(t, s.EmbeddingService())
	assert.Nil(t, s.Generator())
	assert.Nil(t, s.WeatherService())
	assert.False(t, s.Config().EmbeddingAvailable())
	assert.False(t, s.Config().LLMAvailable())
	assert.False(t, s.Config().WeatherAvailable())
}
