package auth

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/custodia-labs/wayfarer-core/internal/core/domain"
)

// low cost keeps the bcrypt tests fast
func newTestAdapter() *Adapter {
	return NewAdapterWithCost("test-secret", bcrypt.MinCost)
}

func testClaims() *domain.TokenClaims {
	now := time.Now()
	return &domain.TokenClaims{
		ClientID:  "svc-client",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}
}

func TestHashAndVerifySecret(t *testing.T) {
	a := newTestAdapter()

	hash, err := a.HashSecret("s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal the plaintext")
	}

	if !a.VerifySecret("s3cret", hash) {
		t.Error("correct secret rejected")
	}
	if a.VerifySecret("wrong", hash) {
		t.Error("wrong secret accepted")
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	a := newTestAdapter()
	claims := testClaims()

	token, err := a.GenerateToken(claims)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("expected a three-part JWT, got %q", token)
	}

	parsed, err := a.ParseToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.ClientID != claims.ClientID {
		t.Errorf("client id %q, want %q", parsed.ClientID, claims.ClientID)
	}
	if parsed.ExpiresAt != claims.ExpiresAt {
		t.Errorf("expiry %d, want %d", parsed.ExpiresAt, claims.ExpiresAt)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	a := newTestAdapter()
	other := NewAdapterWithCost("other-secret", bcrypt.MinCost)

	token, err := a.GenerateToken(testClaims())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := other.ParseToken(token); err == nil {
		t.Error("token signed with a different secret must be rejected")
	}
}

func TestParseToken_Expired(t *testing.T) {
	a := newTestAdapter()

	claims := testClaims()
	claims.IssuedAt = time.Now().Add(-2 * time.Hour).Unix()
	claims.ExpiresAt = time.Now().Add(-time.Hour).Unix()

	token, err := a.GenerateToken(claims)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// jwt/v5 enforces exp during parsing
	if _, err := a.ParseToken(token); err == nil {
		t.Error("expired token must be rejected")
	}
}

func TestParseToken_Garbage(t *testing.T) {
	a := newTestAdapter()
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := a.ParseToken(tok); err == nil {
			t.Errorf("malformed token %q accepted", tok)
		}
	}
}
