package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Domain errors
	ErrInvalidCode      = errors.New("invalid or expired verification code")
	ErrNotVerified      = errors.New("account not verified")
	ErrAlreadySwiped    = errors.New("offer already swiped")
	ErrOfferUnavailable = errors.New("offer not found or expired")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrAdminProtected   = errors.New("admin accounts cannot be deleted")
)
