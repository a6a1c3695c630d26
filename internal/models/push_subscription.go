package models

import (
	"time"
)

// PushSubscription is a browser push endpoint with its encryption keys.
// Subscriptions are deactivated rather than deleted so delivery failures
// leave an audit trail.
type PushSubscription struct {
	ID        string
	UserID    string
	Endpoint  string
	P256dhKey string
	AuthKey   string
	IsActive  bool
	CreatedAt time.Time
}
