package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/flashoffers/api/internal/auth"
	"github.com/flashoffers/api/internal/models"
	"github.com/flashoffers/api/internal/services"
	pkghttp "github.com/flashoffers/api/pkg/http"
)

// PushServiceInterface defines the interface for browser push subscriptions
type PushServiceInterface interface {
	Enabled() bool
	PublicKey() string
	Subscribe(ctx context.Context, userID, endpoint, p256dh, auth string) (*models.PushSubscription, error)
	Unsubscribe(ctx context.Context, userID, endpoint string) error
	Subscriptions(ctx context.Context, userID string) ([]*models.PushSubscription, error)
	SendToUser(ctx context.Context, userID string, payload services.PushPayload) (bool, error)
}

// PushHandler handles Web Push subscription endpoints
type PushHandler struct {
	service PushServiceInterface
}

func NewPushHandler(service PushServiceInterface) *PushHandler {
	return &PushHandler{service: service}
}

// SubscribeRequest mirrors the PushSubscription JSON a browser produces.
type SubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" validate:"required"`
		Auth   string `json:"auth" validate:"required"`
	} `json:"keys"`
}

type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
}

type PublicKeyResponse struct {
	PublicKey string `json:"public_key"`
}

// PublicKey returns the VAPID public key browsers need to subscribe.
func (h *PushHandler) PublicKey(w http.ResponseWriter, r *http.Request) {
	if !h.service.Enabled() {
		pkghttp.WriteNotFound(w, "Push notifications are not configured")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, PublicKeyResponse{PublicKey: h.service.PublicKey()})
}

// Subscribe registers or refreshes a browser push subscription.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	if !h.service.Enabled() {
		pkghttp.WriteNotFound(w, "Push notifications are not configured")
		return
	}

	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	_, err := h.service.Subscribe(r.Context(), user.ID, req.Endpoint, req.Keys.P256dh, req.Keys.Auth)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Incomplete push subscription")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, MessageResponse{Message: "Push subscription registered"})
}

// Unsubscribe deactivates the subscription for the given endpoint.
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	var req UnsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.Unsubscribe(r.Context(), user.ID, req.Endpoint); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Push subscription not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SubscriptionResponse exposes a subscription without its encryption keys.
type SubscriptionResponse struct {
	ID        string `json:"id"`
	Endpoint  string `json:"endpoint"`
	CreatedAt string `json:"created_at"`
}

// List returns the caller's active push subscriptions.
func (h *PushHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	subs, err := h.service.Subscriptions(r.Context(), user.ID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	resp := make([]SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		resp = append(resp, SubscriptionResponse{
			ID:        sub.ID,
			Endpoint:  sub.Endpoint,
			CreatedAt: sub.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// Test sends a test notification to the caller's own browsers so users can
// confirm their subscription works.
func (h *PushHandler) Test(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	if !h.service.Enabled() {
		pkghttp.WriteNotFound(w, "Push notifications are not configured")
		return
	}

	delivered, err := h.service.SendToUser(r.Context(), user.ID, services.PushPayload{
		Title: "FlashOffers",
		Body:  "Push notifications are working.",
		Tag:   "test",
	})
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	if !delivered {
		pkghttp.WriteNotFound(w, "No active push subscriptions")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Test notification sent"})
}
