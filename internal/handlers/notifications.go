package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/flashoffers/api/internal/auth"
	"github.com/flashoffers/api/internal/models"
	pkghttp "github.com/flashoffers/api/pkg/http"
	"github.com/go-chi/chi/v5"
)

// NotificationServiceInterface defines the interface for the inbox
type NotificationServiceInterface interface {
	ListInbox(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, userID, notificationID string) error
}

// NotificationHandler handles the in-app inbox endpoints
type NotificationHandler struct {
	service NotificationServiceInterface
}

func NewNotificationHandler(service NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List returns the user's stored notifications, newest first.
// ?unread=true restricts it to unread entries.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := h.service.ListInbox(r.Context(), user.ID, unreadOnly)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewNotificationResponses(notifications))
}

// MarkRead marks one notification as read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	notificationID := chi.URLParam(r, "id")

	if err := h.service.MarkRead(r.Context(), user.ID, notificationID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Notification not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Notification marked as read"})
}

// MarkAllRead marks the whole inbox as read.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	if err := h.service.MarkAllRead(r.Context(), user.ID); err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "All notifications marked as read"})
}

// Delete removes one notification from the inbox.
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	notificationID := chi.URLParam(r, "id")

	if err := h.service.DeleteNotification(r.Context(), user.ID, notificationID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Notification not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
