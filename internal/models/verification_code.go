package models

import (
	"time"
)

// VerificationCodeType tags a code with the channel it verifies.
type VerificationCodeType string

const (
	CodeTypeEmail VerificationCodeType = "email"
	CodeTypePhone VerificationCodeType = "phone"
)

// VerificationCode is a short-lived 6-digit code issued at registration or
// resend. A code is spent on first successful match.
type VerificationCode struct {
	ID        string
	UserID    string
	Code      string
	Type      VerificationCodeType
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// IsExpired checks if the code has expired
func (c *VerificationCode) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// IsUsed checks if the code has already been consumed
func (c *VerificationCode) IsUsed() bool {
	return c.UsedAt != nil
}

// IsValid checks if the code is still redeemable (not expired and not used)
func (c *VerificationCode) IsValid() bool {
	return !c.IsExpired() && !c.IsUsed()
}
