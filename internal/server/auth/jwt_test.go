package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/okutsen/authsvc/internal/common"
)

var secret = []byte("test-secret")

func TestGenerateAndParse(t *testing.T) {
	tokenString, err := GenerateToken("user@example.com", 42, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ParseToken(tokenString, secret)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.Subject != "user@example.com" {
		t.Fatalf("subject = %q, want user email", claims.Subject)
	}
	if claims.UserID != 42 {
		t.Fatalf("uid = %d, want 42", claims.UserID)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	tokenString, err := GenerateToken("user@example.com", 1, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := ParseToken(tokenString, []byte("other-secret")); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want common.ErrInvalidToken, got %v", err)
	}
}

func TestParse_Expired(t *testing.T) {
	tokenString, err := GenerateToken("user@example.com", 1, secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	if _, err := ParseToken(tokenString, secret); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want common.ErrInvalidToken, got %v", err)
	}
}

func TestParse_Garbage(t *testing.T) {
	if _, err := ParseToken("not-a-jwt", secret); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("want common.ErrInvalidToken, got %v", err)
	}
}
