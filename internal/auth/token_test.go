package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tm := NewTokenManager("test-secret-32-characters-long!!", 30*time.Minute)

	token, err := tm.GenerateToken("user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("token should not be empty")
	}

	email, err := tm.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if email != "user@example.com" {
		t.Errorf("subject: got %q, want user@example.com", email)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret-32-characters-long!!", 30*time.Minute)
	other := NewTokenManager("another-secret-32-characters!!!!", 30*time.Minute)

	token, err := tm.GenerateToken("user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := other.ValidateToken(token); err == nil {
		t.Error("token signed with a different secret should be rejected")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	tm := NewTokenManager("test-secret-32-characters-long!!", -time.Minute)

	token, err := tm.GenerateToken("user@example.com")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := tm.ValidateToken(token); err == nil {
		t.Error("expired token should be rejected")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	tm := NewTokenManager("test-secret-32-characters-long!!", 30*time.Minute)

	if _, err := tm.ValidateToken("not.a.jwt"); err == nil {
		t.Error("malformed token should be rejected")
	}
}
