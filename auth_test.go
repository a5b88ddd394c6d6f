package main

import (
	"errors"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	db := openTestDB(t)
	auth := NewAuth(db)

	id, token, err := auth.Register("  maverick ", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	gotID, username, err := auth.ValidateToken(token)
	if err != nil || gotID != id || username != "maverick" {
		t.Errorf("expected token for %d maverick, got %d %q (%v)", id, gotID, username, err)
	}

	if _, _, err := auth.Register("maverick", "other"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}

	loginID, token, err := auth.Login("maverick", "secret", "10.0.0.1")
	if err != nil || loginID != id || token == "" {
		t.Fatalf("expected login to succeed, got %d (%v)", loginID, err)
	}
	if _, _, err := auth.Login("maverick", "wrong", "10.0.0.1"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("expected ErrBadCredentials for a bad password, got %v", err)
	}
	if _, _, err := auth.Login("goose", "secret", "10.0.0.1"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("expected ErrBadCredentials for an unknown pilot, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	auth := NewAuth(openTestDB(t))
	cases := []struct{ username, password string }{
		{"m", "secret"},
		{"averyveryverylongname", "secret"},
		{"maverick", "abc"},
	}
	for _, c := range cases {
		if _, _, err := auth.Register(c.username, c.password); err == nil {
			t.Errorf("expected %q/%q to be rejected", c.username, c.password)
		}
	}
}

func TestLoginRateLimit(t *testing.T) {
	auth := NewAuth(openTestDB(t))
	for i := 0; i < maxLoginAttempts; i++ {
		if _, _, err := auth.Login("nobody", "pw", "10.0.0.2"); errors.Is(err, ErrRateLimited) {
			t.Fatalf("attempt %d limited too early", i+1)
		}
	}
	if _, _, err := auth.Login("nobody", "pw", "10.0.0.2"); !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
	if _, _, err := auth.Login("nobody", "pw", "10.0.0.3"); errors.Is(err, ErrRateLimited) {
		t.Error("other addresses should not be limited")
	}
}

func TestValidateToken(t *testing.T) {
	db := openTestDB(t)
	auth := NewAuth(db)
	_, token, err := auth.Register("maverick", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := NewAuth(db).ValidateToken(token); err != nil {
		t.Errorf("expected the persisted secret to survive a restart, got %v", err)
	}
	if _, _, err := NewAuth(openTestDB(t)).ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected a foreign token to be rejected, got %v", err)
	}
	if _, _, err := auth.ValidateToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
