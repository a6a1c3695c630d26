package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flashoffers/api/internal/auth"
	"github.com/flashoffers/api/internal/models"
	"github.com/flashoffers/api/internal/services"
	pkghttp "github.com/flashoffers/api/pkg/http"
)

// UserServiceInterface defines the interface for profile management
type UserServiceInterface interface {
	UpdateProfile(ctx context.Context, user *models.User, update services.ProfileUpdate) (*models.User, error)
	ConnectTelegram(ctx context.Context, user *models.User, chatID string) (*models.User, error)
	DisconnectTelegram(ctx context.Context, user *models.User) (*models.User, error)
}

// UserHandler handles the authenticated profile endpoints
type UserHandler struct {
	service UserServiceInterface
}

func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

type UpdateProfileRequest struct {
	Username       *string `json:"username" validate:"omitempty,min=3,max=50"`
	FullName       *string `json:"full_name" validate:"omitempty,max=200"`
	NotifyEmail    *bool   `json:"notify_email"`
	NotifySMS      *bool   `json:"notify_sms"`
	NotifyWhatsApp *bool   `json:"notify_whatsapp"`
	NotifyTelegram *bool   `json:"notify_telegram"`
	NotifyPush     *bool   `json:"notify_push"`
}

type ConnectTelegramRequest struct {
	ChatID string `json:"chat_id" validate:"required"`
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewUserResponse(user))
}

// UpdateMe applies partial profile changes.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), user, services.ProfileUpdate{
		Username:       req.Username,
		FullName:       req.FullName,
		NotifyEmail:    req.NotifyEmail,
		NotifySMS:      req.NotifySMS,
		NotifyWhatsApp: req.NotifyWhatsApp,
		NotifyTelegram: req.NotifyTelegram,
		NotifyPush:     req.NotifyPush,
	})
	if err != nil {
		if errors.Is(err, models.ErrUsernameTaken) {
			pkghttp.WriteConflict(w, "Username already taken")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewUserResponse(updated))
}

// ConnectTelegram links a Telegram chat to the account.
func (h *UserHandler) ConnectTelegram(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	var req ConnectTelegramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	updated, err := h.service.ConnectTelegram(r.Context(), user, req.ChatID)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Invalid Telegram chat id")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewUserResponse(updated))
}

// DisconnectTelegram unlinks the Telegram chat.
func (h *UserHandler) DisconnectTelegram(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	updated, err := h.service.DisconnectTelegram(r.Context(), user)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewUserResponse(updated))
}
