package services

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ProviderGoogle = "google"
	ProviderApple  = "apple"

	googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
	appleKeysURL       = "https://appleid.apple.com/auth/keys"
	appleIssuer        = "https://appleid.apple.com"

	appleKeyCacheTTL = 24 * time.Hour
)

// OAuthIdentity is the provider-asserted identity extracted from a token.
type OAuthIdentity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	FullName      string
}

// OAuthService validates Google and Apple identity tokens. Google tokens go
// through the tokeninfo endpoint; Apple tokens are verified locally against
// Apple's published signing keys.
type OAuthService struct {
	httpClient     *http.Client
	googleClientID string
	appleClientID  string
	logger         *slog.Logger

	keyMu          sync.Mutex
	appleKeys      map[string]*rsa.PublicKey
	appleKeysFetch time.Time
}

func NewOAuthService(googleClientID, appleClientID string, logger *slog.Logger) *OAuthService {
	return &OAuthService{
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		googleClientID: googleClientID,
		appleClientID:  appleClientID,
		logger:         logger,
	}
}

// Verify dispatches to the provider-specific validation.
func (s *OAuthService) Verify(ctx context.Context, provider, token string) (*OAuthIdentity, error) {
	switch strings.ToLower(provider) {
	case ProviderGoogle:
		return s.verifyGoogle(ctx, token)
	case ProviderApple:
		return s.verifyApple(ctx, token)
	default:
		return nil, fmt.Errorf("unsupported oauth provider %q", provider)
	}
}

type googleTokenInfo struct {
	Sub           string `json:"sub"`
	Aud           string `json:"aud"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
}

func (s *OAuthService) verifyGoogle(ctx context.Context, idToken string) (*OAuthIdentity, error) {
	if s.googleClientID == "" {
		return nil, fmt.Errorf("google oauth not configured")
	}

	endpoint := googleTokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build tokeninfo request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google rejected token: status %d", resp.StatusCode)
	}

	var info googleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode tokeninfo response: %w", err)
	}

	if info.Aud != s.googleClientID {
		return nil, fmt.Errorf("token audience mismatch")
	}
	if info.Sub == "" || info.Email == "" {
		return nil, fmt.Errorf("tokeninfo response missing identity fields")
	}

	return &OAuthIdentity{
		Provider:      ProviderGoogle,
		Subject:       info.Sub,
		Email:         strings.ToLower(info.Email),
		EmailVerified: info.EmailVerified == "true",
		FullName:      info.Name,
	}, nil
}

type appleClaims struct {
	Email         string `json:"email"`
	EmailVerified any    `json:"email_verified"` // Apple sends "true" or true
	jwt.RegisteredClaims
}

func (s *OAuthService) verifyApple(ctx context.Context, idToken string) (*OAuthIdentity, error) {
	if s.appleClientID == "" {
		return nil, fmt.Errorf("apple oauth not configured")
	}

	claims := &appleClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token missing key id")
		}

		key, err := s.appleKey(ctx, kid)
		if err != nil {
			return nil, err
		}
		return key, nil
	},
		jwt.WithIssuer(appleIssuer),
		jwt.WithAudience(s.appleClientID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate apple token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid apple token")
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("apple token missing identity fields")
	}

	return &OAuthIdentity{
		Provider:      ProviderApple,
		Subject:       claims.Subject,
		Email:         strings.ToLower(claims.Email),
		EmailVerified: appleBool(claims.EmailVerified),
	}, nil
}

func appleBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val == "true"
	default:
		return false
	}
}

type appleJWKS struct {
	Keys []struct {
		Kid string `json:"kid"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

// appleKey returns Apple's signing key for the given kid, refreshing the
// cached key set when it is stale or the kid is unknown (key rotation).
func (s *OAuthService) appleKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	s.keyMu.Lock()
	defer s.keyMu.Unlock()

	if key, ok := s.appleKeys[kid]; ok && time.Since(s.appleKeysFetch) < appleKeyCacheTTL {
		return key, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, appleKeysURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build apple keys request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch apple keys: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("apple keys endpoint returned status %d", resp.StatusCode)
	}

	var jwks appleJWKS
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("failed to decode apple keys: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(jwks.Keys))
	for _, k := range jwks.Keys {
		pub, err := parseRSAKey(k.N, k.E)
		if err != nil {
			s.logger.Warn("skipping unparseable apple key",
				slog.String("kid", k.Kid),
				slog.Any("error", err))
			continue
		}
		keys[k.Kid] = pub
	}

	s.appleKeys = keys
	s.appleKeysFetch = time.Now()

	key, ok := keys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown apple key id %q", kid)
	}
	return key, nil
}

func parseRSAKey(n, e string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("invalid modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("invalid exponent: %w", err)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}
