package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flashoffers/api/internal/auth"
	"github.com/flashoffers/api/internal/models"
	pkghttp "github.com/flashoffers/api/pkg/http"
	"github.com/go-chi/chi/v5"
)

// OfferServiceInterface defines the interface for the swipe feed
type OfferServiceInterface interface {
	NextEligible(ctx context.Context, userID string, category *models.OfferCategory) (*models.Offer, error)
	ListEligible(ctx context.Context, userID string, category *models.OfferCategory) ([]*models.Offer, error)
	Swipe(ctx context.Context, userID, offerID string, action models.SwipeAction) (*models.UserLike, error)
	Unswipe(ctx context.Context, userID, offerID string) error
	LikedOffers(ctx context.Context, userID string) ([]*models.Offer, error)
	LikedOffer(ctx context.Context, userID, offerID string) (*models.Offer, error)
}

// OfferHandler handles the feed and swipe endpoints
type OfferHandler struct {
	service OfferServiceInterface
}

func NewOfferHandler(service OfferServiceInterface) *OfferHandler {
	return &OfferHandler{service: service}
}

type SwipeRequest struct {
	// Parsed case-insensitively by ParseSwipeAction, so no oneof here.
	Action string `json:"action" validate:"required"`
}

type SwipeResponse struct {
	OfferID string `json:"offer_id"`
	Action  string `json:"action"`
}

// categoryFilter parses the optional ?category= query parameter.
func categoryFilter(r *http.Request) (*models.OfferCategory, error) {
	raw := r.URL.Query().Get("category")
	if raw == "" {
		return nil, nil
	}
	category, err := models.ParseOfferCategory(raw)
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Next returns the next swipeable offer, or 404 once the feed is exhausted.
func (h *OfferHandler) Next(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	category, err := categoryFilter(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Unknown offer category")
		return
	}

	offer, err := h.service.NextEligible(r.Context(), user.ID, category)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "No more offers right now")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewOfferSummary(offer))
}

// List returns all offers the user can still swipe on.
func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	category, err := categoryFilter(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Unknown offer category")
		return
	}

	offers, err := h.service.ListEligible(r.Context(), user.ID, category)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewOfferSummaries(offers))
}

// Swipe records a like or dislike on an offer.
func (h *OfferHandler) Swipe(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	offerID := chi.URLParam(r, "id")

	var req SwipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	action, err := models.ParseSwipeAction(req.Action)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Action must be like or dislike")
		return
	}

	like, err := h.service.Swipe(r.Context(), user.ID, offerID, action)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrOfferUnavailable):
			pkghttp.WriteNotFound(w, "Offer not found or expired")
		case errors.Is(err, models.ErrAlreadySwiped):
			pkghttp.WriteConflict(w, "Offer already swiped")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, SwipeResponse{
		OfferID: like.OfferID,
		Action:  string(like.Action),
	})
}

// Unswipe removes a previous decision so the offer returns to the feed.
func (h *OfferHandler) Unswipe(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	offerID := chi.URLParam(r, "id")

	if err := h.service.Unswipe(r.Context(), user.ID, offerID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "No swipe recorded for this offer")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Liked returns the user's saved offers.
func (h *OfferHandler) Liked(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	offers, err := h.service.LikedOffers(r.Context(), user.ID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewOfferDetails(offers))
}

// LikedDetail returns one saved offer with its redemption details.
func (h *OfferHandler) LikedDetail(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	offerID := chi.URLParam(r, "id")

	offer, err := h.service.LikedOffer(r.Context(), user.ID, offerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Offer not found among your likes")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewOfferDetail(offer))
}
