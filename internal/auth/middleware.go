package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/flashoffers/api/internal/models"
	httputil "github.com/flashoffers/api/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

// UserContextKey is the key for storing the authenticated user in context
const UserContextKey contextKey = "user"

// UserFetcher loads the authenticated user for each request
type UserFetcher interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Middleware validates bearer tokens and injects the current user into
// the request context. The user is loaded fresh on each request so
// deactivated accounts lose access immediately.
func Middleware(tm *TokenManager, users UserFetcher) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteUnauthorized(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				httputil.WriteUnauthorized(w, "invalid authorization header format")
				return
			}

			email, err := tm.ValidateToken(parts[1])
			if err != nil {
				httputil.WriteUnauthorized(w, "invalid or expired token")
				return
			}

			user, err := users.GetByEmail(r.Context(), email)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					httputil.WriteUnauthorized(w, "invalid or expired token")
					return
				}
				httputil.WriteInternalError(w, "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireVerified blocks users who have not completed email and phone
// verification. Must run after Middleware.
func RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r)
		if user == nil {
			httputil.WriteUnauthorized(w, "unauthorized")
			return
		}

		if !user.IsVerified {
			httputil.WriteForbidden(w, "account verification required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin blocks non-admin users. Must run after Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r)
		if user == nil {
			httputil.WriteUnauthorized(w, "unauthorized")
			return
		}

		if !user.IsAdmin {
			httputil.WriteForbidden(w, "admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext extracts the authenticated user from request context
func GetUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
