package utils

import (
	"testing"
	"time"

	"khidmaBack/internal/models"
)

func TestJWTRoundTrip(t *testing.T) {
	m, err := NewManager("secret", time.Minute)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	tok, err := m.NewJWT(12, models.RoleSeller)
	if err != nil {
		t.Fatalf("NewJWT: %v", err)
	}
	claims, err := m.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != 12 || claims.Role != models.RoleSeller {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseRejectsForeignKey(t *testing.T) {
	a, _ := NewManager("a", time.Minute)
	b, _ := NewManager("b", time.Minute)
	tok, _ := a.NewJWT(1, models.RoleBuyer)
	if _, err := b.Parse(tok); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	m, _ := NewManager("secret", time.Nanosecond)
	tok, _ := m.NewJWT(1, models.RoleBuyer)
	time.Sleep(1100 * time.Millisecond)
	if _, err := m.Parse(tok); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestRefreshTokensAreUnique(t *testing.T) {
	m, _ := NewManager("secret", time.Minute)
	a, _ := m.NewRefreshToken()
	b, _ := m.NewRefreshToken()
	if len(a) != 64 || a == b {
		t.Fatalf("unexpected refresh tokens %q %q", a, b)
	}
}

func TestEmptyKey(t *testing.T) {
	if _, err := NewManager("", time.Minute); err == nil {
		t.Fatal("expected error for empty key")
	}
}
