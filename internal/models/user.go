package models

import (
	"time"
)

type User struct {
	ID           string
	Email        string
	Phone        string
	Username     string // optional, unique when set
	FullName     string
	PasswordHash string // NULL for OAuth-only users

	IsActive      bool
	IsVerified    bool
	EmailVerified bool
	PhoneVerified bool
	IsAdmin       bool

	// OAuth linkage, empty for password accounts
	OAuthProvider string
	OAuthID       string

	// Per-channel notification opt-ins
	NotifyEmail    bool
	NotifySMS      bool
	NotifyWhatsApp bool
	NotifyTelegram bool
	NotifyPush     bool
	TelegramChatID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SyncVerified promotes is_verified/is_active once both channels are confirmed.
// The flags only move forward here; admin edits go through the admin surface.
func (u *User) SyncVerified() {
	if u.EmailVerified && u.PhoneVerified {
		u.IsVerified = true
		u.IsActive = true
	}
}
