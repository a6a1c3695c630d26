package auth

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		shouldFail bool
	}{
		{
			name:       "valid password",
			password:   "sturdy-horse-42",
			shouldFail: false,
		},
		{
			name:       "valid mixed case",
			password:   "SecurePass123",
			shouldFail: false,
		},
		{
			name:       "too short",
			password:   "abc1",
			shouldFail: true,
		},
		{
			name:       "too long",
			password:   strings.Repeat("a", 130) + "1",
			shouldFail: true,
		},
		{
			name:       "missing digit",
			password:   "onlyletters",
			shouldFail: true,
		},
		{
			name:       "missing letter",
			password:   "1234567890",
			shouldFail: true,
		},
		{
			name:       "common password rejected",
			password:   "password123",
			shouldFail: true,
		},
		{
			name:       "common password rejected case insensitive",
			password:   "PASSWORD123",
			shouldFail: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)

			if tt.shouldFail {
				if err == nil {
					t.Errorf("expected error, got nil")
				} else if err.Error() != "invalid password" {
					// Validation details must never leak to clients
					t.Errorf("error message should be generic, got: %v", err)
				}
			} else {
				if err != nil {
					t.Errorf("expected no error, got: %v", err)
				}
			}
		})
	}
}

func TestHashAndComparePassword(t *testing.T) {
	password := "sturdy-horse-42"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash == "" {
		t.Error("hash should not be empty")
	}

	if hash == password {
		t.Error("hash should not equal plaintext password")
	}

	if err := ComparePassword(hash, password); err != nil {
		t.Errorf("ComparePassword with correct password failed: %v", err)
	}

	if err := ComparePassword(hash, "wrong-password-1"); err == nil {
		t.Error("ComparePassword with wrong password should fail")
	}
}

func TestHashPassword_Empty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Error("hashing an empty password should fail")
	}
}
