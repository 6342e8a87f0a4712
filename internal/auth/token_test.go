package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func fixedManager(secret string, at time.Time) *TokenManager {
	m := NewTokenManager(secret)
	m.now = func() time.Time { return at }
	return m
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret")

	token, err := m.Generate("user-1", true)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user-1, got %q", claims.UserID)
	}
	if !claims.Admin {
		t.Fatalf("expected admin claim to survive the round trip")
	}
}

func TestTokenValidWindow(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := fixedManager("test-secret", issued)

	token, err := m.Generate("user-1", false)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	// Still inside the 24h window.
	m.now = func() time.Time { return issued.Add(23 * time.Hour) }
	if _, err := m.Verify(token); err != nil {
		t.Fatalf("token should be valid before expiry, got %v", err)
	}

	// Past the window.
	m.now = func() time.Time { return issued.Add(25 * time.Hour) }
	if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after expiry, got %v", err)
	}
}

func TestTokenTampered(t *testing.T) {
	m := NewTokenManager("test-secret")

	token, err := m.Generate("user-1", false)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	// Flip a character in the signature segment.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected three token segments, got %d", len(parts))
	}
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := m.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a").Generate("user-1", false)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	if _, err := NewTokenManager("secret-b").Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken with wrong secret, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22!")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "hunter22!" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if !VerifyPassword("hunter22!", hash) {
		t.Fatalf("expected matching password to verify")
	}
	if VerifyPassword("hunter23!", hash) {
		t.Fatalf("expected non-matching password to fail")
	}
}
