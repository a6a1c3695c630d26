package auth

import (
	"fmt"
	"time"

	"github.com/flashoffers/api/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenManager handles JWT token generation and validation
type TokenManager struct {
	secret       string
	accessExpiry time.Duration
}

func NewTokenManager(secret string, accessExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:       secret,
		accessExpiry: accessExpiry,
	}
}

// GenerateToken creates an access token with the user's email as subject
func (tm *TokenManager) GenerateToken(email string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		ExpiresAt: jwt.NewNumericDate(now.Add(tm.accessExpiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken verifies a token and returns the subject email
func (tm *TokenManager) ValidateToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", models.ErrUnauthorized
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("invalid token: missing subject")
	}

	return claims.Subject, nil
}

// AccessExpiry exposes the configured token lifetime for login responses
func (tm *TokenManager) AccessExpiry() time.Duration {
	return tm.accessExpiry
}
