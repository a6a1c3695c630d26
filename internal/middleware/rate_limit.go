package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
}

// AuthRateLimit returns the rate limit for login and registration
// endpoints (10 requests per minute per IP).
func AuthRateLimit() RateLimitConfig {
	return RateLimitConfig{RequestsPerMinute: 10}
}

// VerificationRateLimit returns the tighter limit for code resend and
// verification attempts (5 requests per minute per IP). Codes are only six
// digits; the limit is what makes brute force impractical.
func VerificationRateLimit() RateLimitConfig {
	return RateLimitConfig{RequestsPerMinute: 5}
}

// RateLimitByIP creates a middleware that rate limits requests by client IP
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyByRealIP(),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Rate limit exceeded"}`))
		}),
	)
}
