package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/flashoffers/api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfferService_Swipe_Success(t *testing.T) {
	offer := NewTestOffer("offer123", "Half-price pizza")

	mockOfferRepo := &MockOfferRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Offer, error) {
			return offer, nil
		},
	}
	mockSwipeRepo := &MockSwipeRepository{}

	svc := NewOfferService(mockOfferRepo, mockSwipeRepo, slog.Default())

	like, err := svc.Swipe(context.Background(), "user123", "offer123", models.SwipeLike)

	require.NoError(t, err)
	assert.Equal(t, models.SwipeLike, like.Action)
	assert.Equal(t, "user123", like.UserID)
}

func TestOfferService_Swipe_ExpiredOffer(t *testing.T) {
	offer := NewTestOffer("offer123", "Old deal")
	offer.ExpiryDate = time.Now().Add(-time.Hour)

	mockOfferRepo := &MockOfferRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Offer, error) {
			return offer, nil
		},
	}

	svc := NewOfferService(mockOfferRepo, &MockSwipeRepository{}, slog.Default())

	like, err := svc.Swipe(context.Background(), "user123", "offer123", models.SwipeLike)

	assert.ErrorIs(t, err, models.ErrOfferUnavailable)
	assert.Nil(t, like)
}

func TestOfferService_Swipe_InactiveOffer(t *testing.T) {
	offer := NewTestOffer("offer123", "Paused deal")
	offer.IsActive = false

	mockOfferRepo := &MockOfferRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Offer, error) {
			return offer, nil
		},
	}

	svc := NewOfferService(mockOfferRepo, &MockSwipeRepository{}, slog.Default())

	_, err := svc.Swipe(context.Background(), "user123", "offer123", models.SwipeDislike)

	assert.ErrorIs(t, err, models.ErrOfferUnavailable)
}

func TestOfferService_Swipe_UnknownOffer(t *testing.T) {
	svc := NewOfferService(&MockOfferRepository{}, &MockSwipeRepository{}, slog.Default())

	_, err := svc.Swipe(context.Background(), "user123", "missing", models.SwipeLike)

	assert.ErrorIs(t, err, models.ErrOfferUnavailable)
}

func TestOfferService_Swipe_ExistingDecision(t *testing.T) {
	offer := NewTestOffer("offer123", "Deal")

	mockOfferRepo := &MockOfferRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Offer, error) {
			return offer, nil
		},
	}
	created := false
	mockSwipeRepo := &MockSwipeRepository{
		GetByUserAndOfferFunc: func(ctx context.Context, userID, offerID string) (*models.UserLike, error) {
			return &models.UserLike{ID: "like_1", UserID: userID, OfferID: offerID, Action: models.SwipeLike}, nil
		},
		CreateFunc: func(ctx context.Context, like *models.UserLike) (*models.UserLike, error) {
			created = true
			return like, nil
		},
	}

	svc := NewOfferService(mockOfferRepo, mockSwipeRepo, slog.Default())

	_, err := svc.Swipe(context.Background(), "user123", "offer123", models.SwipeDislike)

	assert.ErrorIs(t, err, models.ErrAlreadySwiped)
	assert.False(t, created, "existing decision must be caught before the insert")
}

func TestOfferService_Swipe_DuplicateDecision(t *testing.T) {
	offer := NewTestOffer("offer123", "Deal")

	mockOfferRepo := &MockOfferRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Offer, error) {
			return offer, nil
		},
	}
	mockSwipeRepo := &MockSwipeRepository{
		CreateFunc: func(ctx context.Context, like *models.UserLike) (*models.UserLike, error) {
			// unique constraint fired
			return nil, models.ErrConflict
		},
	}

	svc := NewOfferService(mockOfferRepo, mockSwipeRepo, slog.Default())

	_, err := svc.Swipe(context.Background(), "user123", "offer123", models.SwipeLike)

	assert.ErrorIs(t, err, models.ErrAlreadySwiped)
}

func TestOfferService_NextEligible_FeedExhausted(t *testing.T) {
	svc := NewOfferService(&MockOfferRepository{}, &MockSwipeRepository{}, slog.Default())

	offer, err := svc.NextEligible(context.Background(), "user123", nil)

	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Nil(t, offer)
}

func TestTimeUntilExpiry(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		remaining time.Duration
		want      string
	}{
		{"expired", -time.Second, "Expired"},
		{"exactly now", 0, "Expired"},
		{"minutes only", 45 * time.Minute, "45m"},
		{"hours and minutes", 2*time.Hour + 5*time.Minute, "2h 5m"},
		{"days keep minutes", 25*time.Hour + 3*time.Minute, "1d 1h 3m"},
		{"whole day", 24 * time.Hour, "1d 0h 0m"},
		{"under a minute", 30 * time.Second, "0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeUntilExpiry(now.Add(tt.remaining), now))
		})
	}
}
