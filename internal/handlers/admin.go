package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/flashoffers/api/internal/auth"
	"github.com/flashoffers/api/internal/models"
	"github.com/flashoffers/api/internal/repositories"
	"github.com/flashoffers/api/internal/services"
	pkghttp "github.com/flashoffers/api/pkg/http"
	"github.com/go-chi/chi/v5"
)

// AdminServiceInterface defines the interface for the management surface
type AdminServiceInterface interface {
	ListUsers(ctx context.Context, filter repositories.UserFilter) ([]*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, admin *models.User, targetID string, update services.AdminUserUpdate) (*models.User, error)
	DeleteUser(ctx context.Context, admin *models.User, targetID string) error
	ListOffers(ctx context.Context, filter repositories.OfferFilter) ([]*models.Offer, error)
	GetOffer(ctx context.Context, id string) (*models.Offer, error)
	CreateOffer(ctx context.Context, admin *models.User, offer *models.Offer) (*models.Offer, error)
	UpdateOffer(ctx context.Context, admin *models.User, id string, offer *models.Offer) (*models.Offer, error)
	DeleteOffer(ctx context.Context, admin *models.User, id string) error
	ListActions(ctx context.Context, filter repositories.ActionFilter) ([]*models.AdminAction, error)
	Stats(ctx context.Context) (*services.AdminStats, error)
}

// AdminHandler handles the /admin endpoints. RequireAdmin runs upstream,
// so every request here carries an admin user in context.
type AdminHandler struct {
	service AdminServiceInterface
}

func NewAdminHandler(service AdminServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type AdminUpdateUserRequest struct {
	IsActive   *bool `json:"is_active"`
	IsVerified *bool `json:"is_verified"`
	IsAdmin    *bool `json:"is_admin"`
}

type OfferRequest struct {
	Title              string    `json:"title" validate:"required,max=300"`
	Description        string    `json:"description" validate:"omitempty,max=2000"`
	ImageURL           string    `json:"image_url" validate:"omitempty,url"`
	ProviderName       string    `json:"provider_name" validate:"required,max=200"`
	Category           string    `json:"category" validate:"required"`
	DiscountPercentage *float64  `json:"discount_percentage" validate:"omitempty,gte=0,lte=100"`
	DiscountAmount     *float64  `json:"discount_amount" validate:"omitempty,gte=0"`
	OriginalPrice      *float64  `json:"original_price" validate:"omitempty,gte=0"`
	DiscountedPrice    *float64  `json:"discounted_price" validate:"omitempty,gte=0"`
	ReferralLink       string    `json:"referral_link" validate:"omitempty,url"`
	PromoCode          string    `json:"promo_code" validate:"omitempty,max=100"`
	TermsConditions    string    `json:"terms_conditions" validate:"omitempty,max=5000"`
	Instructions       string    `json:"instructions" validate:"omitempty,max=5000"`
	ExpiryDate         time.Time `json:"expiry_date" validate:"required"`
	IsActive           bool      `json:"is_active"`
}

type AdminStatsResponse struct {
	TotalUsers    int64 `json:"total_users"`
	VerifiedUsers int64 `json:"verified_users"`
	AdminUsers    int64 `json:"admin_users"`
	TotalOffers   int64 `json:"total_offers"`
	ActiveOffers  int64 `json:"active_offers"`
	TotalLikes    int64 `json:"total_likes"`
	TotalDislikes int64 `json:"total_dislikes"`
}

func (r OfferRequest) toModel(category models.OfferCategory) *models.Offer {
	return &models.Offer{
		Title:              r.Title,
		Description:        r.Description,
		ImageURL:           r.ImageURL,
		ProviderName:       r.ProviderName,
		Category:           category,
		DiscountPercentage: r.DiscountPercentage,
		DiscountAmount:     r.DiscountAmount,
		OriginalPrice:      r.OriginalPrice,
		DiscountedPrice:    r.DiscountedPrice,
		ReferralLink:       r.ReferralLink,
		PromoCode:          r.PromoCode,
		TermsConditions:    r.TermsConditions,
		Instructions:       r.Instructions,
		ExpiryDate:         r.ExpiryDate,
		IsActive:           r.IsActive,
	}
}

// queryBool reads an optional boolean query parameter.
func queryBool(r *http.Request, name string) *bool {
	switch r.URL.Query().Get(name) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	default:
		return nil
	}
}

// ListUsers returns accounts matching the optional search and flag filters.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context(), repositories.UserFilter{
		Search:     r.URL.Query().Get("search"),
		IsAdmin:    queryBool(r, "is_admin"),
		IsVerified: queryBool(r, "is_verified"),
		Limit:      queryInt(r, "limit", defaultPageSize, maxPageSize),
		Offset:     queryInt(r, "offset", 0, 0),
	})
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewUserResponses(users))
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewUserResponse(user))
}

// UpdateUser changes account flags on a target account.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	admin := auth.GetUserFromContext(r)
	if admin == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	var req AdminUpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	updated, err := h.service.UpdateUser(r.Context(), admin, chi.URLParam(r, "id"), services.AdminUserUpdate{
		IsActive:   req.IsActive,
		IsVerified: req.IsVerified,
		IsAdmin:    req.IsAdmin,
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewUserResponse(updated))
}

// DeleteUser removes an account. Admin accounts must be demoted first.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	admin := auth.GetUserFromContext(r)
	if admin == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	if err := h.service.DeleteUser(r.Context(), admin, chi.URLParam(r, "id")); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		case errors.Is(err, models.ErrAdminProtected):
			pkghttp.WriteForbidden(w, "Admin accounts cannot be deleted")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListOffers returns offers including inactive and expired ones.
func (h *AdminHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	filter := repositories.OfferFilter{
		Search:   r.URL.Query().Get("search"),
		IsActive: queryBool(r, "is_active"),
		Limit:    queryInt(r, "limit", defaultPageSize, maxPageSize),
		Offset:   queryInt(r, "offset", 0, 0),
	}

	if raw := r.URL.Query().Get("category"); raw != "" {
		category, err := models.ParseOfferCategory(raw)
		if err != nil {
			pkghttp.WriteBadRequest(w, "Unknown offer category")
			return
		}
		filter.Category = &category
	}

	offers, err := h.service.ListOffers(r.Context(), filter)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewOfferDetails(offers))
}

func (h *AdminHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	offer, err := h.service.GetOffer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Offer not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewOfferDetail(offer))
}

// CreateOffer publishes a new offer and triggers the announcement fan-out.
func (h *AdminHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	admin := auth.GetUserFromContext(r)
	if admin == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	req, category, ok := h.decodeOffer(w, r)
	if !ok {
		return
	}

	created, err := h.service.CreateOffer(r.Context(), admin, req.toModel(category))
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, err.Error())
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, NewOfferDetail(created))
}

func (h *AdminHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	admin := auth.GetUserFromContext(r)
	if admin == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	req, category, ok := h.decodeOffer(w, r)
	if !ok {
		return
	}

	updated, err := h.service.UpdateOffer(r.Context(), admin, chi.URLParam(r, "id"), req.toModel(category))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Offer not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, err.Error())
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewOfferDetail(updated))
}

func (h *AdminHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	admin := auth.GetUserFromContext(r)
	if admin == nil {
		pkghttp.WriteUnauthorized(w, "Unauthorized")
		return
	}

	if err := h.service.DeleteOffer(r.Context(), admin, chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Offer not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListActions returns the audit trail, newest first.
func (h *AdminHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	actions, err := h.service.ListActions(r.Context(), repositories.ActionFilter{
		ActionType:   r.URL.Query().Get("action_type"),
		ResourceType: r.URL.Query().Get("resource_type"),
		Limit:        queryInt(r, "limit", defaultPageSize, maxPageSize),
		Offset:       queryInt(r, "offset", 0, 0),
	})
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewAdminActionResponses(actions))
}

// Stats returns the dashboard counters.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, AdminStatsResponse{
		TotalUsers:    stats.TotalUsers,
		VerifiedUsers: stats.VerifiedUsers,
		AdminUsers:    stats.AdminUsers,
		TotalOffers:   stats.TotalOffers,
		ActiveOffers:  stats.ActiveOffers,
		TotalLikes:    stats.TotalLikes,
		TotalDislikes: stats.TotalDislikes,
	})
}

// decodeOffer parses and validates the shared create/update offer payload.
func (h *AdminHandler) decodeOffer(w http.ResponseWriter, r *http.Request) (OfferRequest, models.OfferCategory, bool) {
	var req OfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return req, "", false
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return req, "", false
	}

	category, err := models.ParseOfferCategory(req.Category)
	if err != nil {
		pkghttp.WriteBadRequest(w, "Unknown offer category")
		return req, "", false
	}

	return req, category, true
}
