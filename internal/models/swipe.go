package models

import (
	"fmt"
	"strings"
	"time"
)

// SwipeAction is the stored like/dislike decision.
type SwipeAction string

const (
	SwipeLike    SwipeAction = "like"
	SwipeDislike SwipeAction = "dislike"
)

// ParseSwipeAction normalizes case-insensitive input to the stored value.
func ParseSwipeAction(s string) (SwipeAction, error) {
	a := SwipeAction(strings.ToLower(strings.TrimSpace(s)))
	if a != SwipeLike && a != SwipeDislike {
		return "", fmt.Errorf("invalid swipe action %q: %w", s, ErrBadRequest)
	}
	return a, nil
}

// UserLike records a single swipe decision. At most one row exists per
// (user, offer) pair, enforced by a unique index.
type UserLike struct {
	ID        string
	UserID    string
	OfferID   string
	Action    SwipeAction
	CreatedAt time.Time
}
