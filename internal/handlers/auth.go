package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flashoffers/api/internal/models"
	"github.com/flashoffers/api/internal/services"
	pkghttp "github.com/flashoffers/api/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Register(ctx context.Context, input services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	OAuthLogin(ctx context.Context, provider, token string) (*services.LoginResult, error)
	Resend(ctx context.Context, email string) error
	VerifyAccount(ctx context.Context, email, code string) (*models.User, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service AuthServiceInterface
}

func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// Request DTOs

type RegisterRequest struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,e164"`
	// Optional so OAuth-first users can claim an account without one.
	Password string `json:"password"`
	FullName string `json:"full_name" validate:"omitempty,max=200"`
	Username string `json:"username" validate:"omitempty,min=3,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type OAuthLoginRequest struct {
	Provider string `json:"provider" validate:"required,oneof=google apple"`
	Token    string `json:"token" validate:"required"`
}

type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type ResendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// LoginResponse carries the bearer token and the signed-in user.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
	User        UserResponse `json:"user"`
}

const registerMessage = "If the details are valid, verification codes have been sent to your email and phone."

// Register handles signup. The response is identical whether or not the
// email or phone already belongs to an account, so registration does not
// reveal which users exist.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	_, err := h.service.Register(r.Context(), services.RegisterInput{
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		FullName: req.FullName,
		Username: req.Username,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			// fall through to the generic success message below
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Password does not meet requirements")
			return
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
			return
		}
	}

	pkghttp.WriteJSON(w, http.StatusCreated, MessageResponse{Message: registerMessage})
}

// Login handles email/password authentication.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthorized):
			pkghttp.WriteUnauthorized(w, "Authentication failed")
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "Account not verified")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	writeLoginResponse(w, result)
}

// OAuthLogin handles Google and Apple sign-in.
func (h *AuthHandler) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	var req OAuthLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.service.OAuthLogin(r.Context(), req.Provider, req.Token)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			pkghttp.WriteUnauthorized(w, "Authentication failed")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	writeLoginResponse(w, result)
}

// Verify redeems a 6-digit code. Keyed on email rather than a bearer token:
// unverified users cannot log in, so this has to work without one.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	updated, err := h.service.VerifyAccount(r.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		case errors.Is(err, models.ErrInvalidCode):
			pkghttp.WriteBadRequest(w, "Invalid or expired verification code")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, NewUserResponse(updated))
}

// Resend issues fresh codes for every channel the account has not yet
// confirmed.
func (h *AuthHandler) Resend(w http.ResponseWriter, r *http.Request) {
	var req ResendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.Resend(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Account already verified")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Verification codes sent"})
}

func writeLoginResponse(w http.ResponseWriter, result *services.LoginResult) {
	pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
		ExpiresIn:   int(result.ExpiresIn.Seconds()),
		User:        NewUserResponse(result.User),
	})
}
