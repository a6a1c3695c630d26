package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flashoffers/api/internal/models"
)

// OfferRepository defines the interface for offer data access
type OfferRepository interface {
	GetByID(ctx context.Context, id string) (*models.Offer, error)
	ListEligible(ctx context.Context, userID string, category *models.OfferCategory) ([]*models.Offer, error)
	NextEligible(ctx context.Context, userID string, category *models.OfferCategory) (*models.Offer, error)
	ListLiked(ctx context.Context, userID string) ([]*models.Offer, error)
	GetLiked(ctx context.Context, userID, offerID string) (*models.Offer, error)
}

// SwipeRepository defines the interface for swipe data access
type SwipeRepository interface {
	Create(ctx context.Context, like *models.UserLike) (*models.UserLike, error)
	GetByUserAndOffer(ctx context.Context, userID, offerID string) (*models.UserLike, error)
	Delete(ctx context.Context, userID, offerID string) error
}

// OfferService drives the swipe feed: which offers a user sees next and
// what happens when they decide.
type OfferService struct {
	offerRepo OfferRepository
	swipeRepo SwipeRepository
	logger    *slog.Logger
}

func NewOfferService(offerRepo OfferRepository, swipeRepo SwipeRepository, logger *slog.Logger) *OfferService {
	return &OfferService{
		offerRepo: offerRepo,
		swipeRepo: swipeRepo,
		logger:    logger,
	}
}

// NextEligible returns the next offer for the user's feed, or ErrNotFound
// when the feed is exhausted.
func (s *OfferService) NextEligible(ctx context.Context, userID string, category *models.OfferCategory) (*models.Offer, error) {
	return s.offerRepo.NextEligible(ctx, userID, category)
}

// ListEligible returns every offer the user can still swipe on.
func (s *OfferService) ListEligible(ctx context.Context, userID string, category *models.OfferCategory) ([]*models.Offer, error) {
	return s.offerRepo.ListEligible(ctx, userID, category)
}

// Swipe records a like or dislike. The offer must still be live, and each
// user gets exactly one decision per offer: the unique constraint on
// (user_id, offer_id) turns races between concurrent swipes into
// ErrAlreadySwiped.
func (s *OfferService) Swipe(ctx context.Context, userID, offerID string, action models.SwipeAction) (*models.UserLike, error) {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrOfferUnavailable
		}
		return nil, fmt.Errorf("failed to load offer: %w", err)
	}

	if !offer.Swipeable(time.Now()) {
		return nil, models.ErrOfferUnavailable
	}

	if _, err := s.swipeRepo.GetByUserAndOffer(ctx, userID, offerID); err == nil {
		return nil, models.ErrAlreadySwiped
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing swipe: %w", err)
	}

	like, err := s.swipeRepo.Create(ctx, &models.UserLike{
		UserID:  userID,
		OfferID: offerID,
		Action:  action,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrAlreadySwiped
		}
		return nil, fmt.Errorf("failed to record swipe: %w", err)
	}

	s.logger.Info("swipe recorded",
		slog.String("user_id", userID),
		slog.String("offer_id", offerID),
		slog.String("action", string(action)))

	return like, nil
}

// Unswipe removes a previous decision so the offer re-enters the feed.
func (s *OfferService) Unswipe(ctx context.Context, userID, offerID string) error {
	return s.swipeRepo.Delete(ctx, userID, offerID)
}

// LikedOffers returns the user's saved (liked, still active) offers.
func (s *OfferService) LikedOffers(ctx context.Context, userID string) ([]*models.Offer, error) {
	return s.offerRepo.ListLiked(ctx, userID)
}

// LikedOffer returns one saved offer with full redemption details.
func (s *OfferService) LikedOffer(ctx context.Context, userID, offerID string) (*models.Offer, error) {
	return s.offerRepo.GetLiked(ctx, userID, offerID)
}

// TimeUntilExpiry renders the remaining lifetime of an offer for display.
// Elapsed offers render as "Expired"; otherwise the largest units are kept,
// e.g. "1d 2h 3m", "2h 5m", "45m".
func TimeUntilExpiry(expiry, now time.Time) string {
	remaining := expiry.Sub(now)
	if remaining <= 0 {
		return "Expired"
	}

	days := int(remaining.Hours()) / 24
	hours := int(remaining.Hours()) % 24
	minutes := int(remaining.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
