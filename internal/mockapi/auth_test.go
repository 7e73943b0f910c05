package mockapi

import (
	"errors"
	"testing"
	"time"
)

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("secret-0123456789", time.Hour)
	raw, err := tokens.Issue(&User{ID: "u1", Email: "a@b.org", Role: "Nurse"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	cl, err := tokens.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if cl.UserID != "u1" || cl.Email != "a@b.org" || cl.Role != "Nurse" {
		t.Errorf("unexpected claims %+v", cl)
	}
}

func TestTokensRejectsTampering(t *testing.T) {
	issuer := NewTokens("secret-a", time.Hour)
	raw, _ := issuer.Issue(&User{ID: "u1"})

	if _, err := NewTokens("secret-b", time.Hour).Verify(raw); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for a foreign signature, got %v", err)
	}

	expired := NewTokens("secret-a", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _ := expired.Issue(&User{ID: "u1"})
	if _, err := issuer.Verify(old); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for an expired token, got %v", err)
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "hunter22" {
		t.Fatal("password stored in clear")
	}
	if !CheckPassword(hash, "hunter22") {
		t.Error("expected the password to match")
	}
	if CheckPassword(hash, "hunter23") {
		t.Error("expected a different password to fail")
	}
}
