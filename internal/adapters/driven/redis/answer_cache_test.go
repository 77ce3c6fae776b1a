package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, mr, func() {
		client.Close()
		mr.Close()
	}
}

func testAnswer() *domain.Answer {
	return &domain.Answer{
		Query:      "weather in Rome",
		Text:       "It is 21.5°C and clear in Rome.",
		Route:      domain.RouteWeatherOnly,
		Confidence: 0.95,
		Sources: []domain.Source{
			{Type: domain.SourceTypeWeather, Ref: "Rome", Score: 1.0},
		},
	}
}

func TestAnswerCache_SetAndGet(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewAnswerCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "answer:abc", testAnswer(), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := cache.Get(ctx, "answer:abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != "It is 21.5°C and clear in Rome." {
		t.Errorf("unexpected text %q", got.Text)
	}
	if got.Route != domain.RouteWeatherOnly || got.Confidence != 0.95 {
		t.Errorf("routing fields lost: %+v", got)
	}
	if len(got.Sources) != 1 || got.Sources[0].Ref != "Rome" {
		t.Errorf("sources lost: %+v", got.Sources)
	}
}

func TestAnswerCache_Miss(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewAnswerCache(client)

	_, err := cache.Get(context.Background(), "answer:missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAnswerCache_Expiry(t *testing.T) {
	client, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewAnswerCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "answer:ttl", testAnswer(), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, "answer:ttl")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected expiry to produce ErrNotFound, got %v", err)
	}
}

func TestAnswerCache_ZeroTTLSkipsWrite(t *testing.T) {
	client, _, cleanup := setupTestRedis(t)
	defer cleanup()

	cache := NewAnswerCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "answer:zero", testAnswer(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := cache.Get(ctx, "answer:zero")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected nothing stored, got %v", err)
	}
}
