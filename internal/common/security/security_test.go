package security

import (
	"context"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
)

func TestGenerateTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("test-secret"), time.Hour)
	tokenString, err := issuer.GenerateToken("laptop", "popup")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	token, err := jwtauth.VerifyToken(issuer.Auth(), tokenString)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		t.Fatalf("claims: %v", err)
	}
	id, err := GetClientIDFromClaims(claims)
	if err != nil || id != "laptop" {
		t.Fatalf("client id = %q, %v", id, err)
	}
	role, err := GetRoleFromClaims(claims)
	if err != nil || role != "popup" {
		t.Fatalf("role = %q, %v", role, err)
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	issuer := NewTokenIssuer([]byte("one"), time.Hour)
	other := NewTokenIssuer([]byte("two"), time.Hour)
	tokenString, err := issuer.GenerateToken("laptop", "popup")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := jwtauth.VerifyToken(other.Auth(), tokenString); err == nil {
		t.Fatalf("expected verification failure with another secret")
	}
}

func TestClaimsMissing(t *testing.T) {
	if _, err := GetClientIDFromClaims(map[string]interface{}{}); err == nil {
		t.Fatalf("expected error for missing client_id")
	}
	if _, err := GetRoleFromClaims(map[string]interface{}{"role": 3}); err == nil {
		t.Fatalf("expected error for non-string role")
	}
}

func TestSealerRoundTrip(t *testing.T) {
	s, err := NewSealer([]byte("store-secret"))
	if err != nil {
		t.Fatalf("new sealer: %v", err)
	}
	sealed, err := s.Seal("ghp_abcdefghijklmnopqrstuvwxyz")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if sealed == "ghp_abcdefghijklmnopqrstuvwxyz" {
		t.Fatalf("sealed value equals plaintext")
	}
	plain, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if plain != "ghp_abcdefghijklmnopqrstuvwxyz" {
		t.Fatalf("unexpected plaintext %q", plain)
	}
}

func TestSealerRejectsOtherKey(t *testing.T) {
	a, _ := NewSealer([]byte("a"))
	b, _ := NewSealer([]byte("b"))
	sealed, err := a.Seal("token")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := b.Open(sealed); err != ErrSealedValueInvalid {
		t.Fatalf("expected ErrSealedValueInvalid, got %v", err)
	}
	if _, err := a.Open("not base64!"); err != ErrSealedValueInvalid {
		t.Fatalf("expected ErrSealedValueInvalid for garbage, got %v", err)
	}
}

func TestNewSealerEmptySecret(t *testing.T) {
	if _, err := NewSealer(nil); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
