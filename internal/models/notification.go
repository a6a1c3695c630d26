package models

import (
	"fmt"
	"strings"
	"time"
)

// NotificationType identifies the delivery channel for a stored notification.
type NotificationType string

const (
	NotificationEmail    NotificationType = "email"
	NotificationSMS      NotificationType = "sms"
	NotificationWhatsApp NotificationType = "whatsapp"
	NotificationTelegram NotificationType = "telegram"
)

var notificationTypes = map[NotificationType]bool{
	NotificationEmail:    true,
	NotificationSMS:      true,
	NotificationWhatsApp: true,
	NotificationTelegram: true,
}

func ParseNotificationType(s string) (NotificationType, error) {
	t := NotificationType(strings.ToLower(strings.TrimSpace(s)))
	if !notificationTypes[t] {
		return "", fmt.Errorf("unknown notification type %q: %w", s, ErrBadRequest)
	}
	return t, nil
}

func (t NotificationType) Valid() bool {
	return notificationTypes[t]
}

// Notification is a delivered message recorded for the in-app inbox.
type Notification struct {
	ID      string
	UserID  string
	OfferID string
	Type    NotificationType
	Message string
	SentAt  time.Time
	IsRead  bool
}
