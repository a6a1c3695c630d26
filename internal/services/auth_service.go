package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/flashoffers/api/internal/models"
	"github.com/flashoffers/api/pkg/auth"
	"github.com/flashoffers/api/pkg/logger"
)

// TokenIssuer defines the interface for minting access tokens
type TokenIssuer interface {
	GenerateToken(email string) (string, error)
	AccessExpiry() time.Duration
}

// Verifier defines the interface for the verification code flow
type Verifier interface {
	IssueCodes(ctx context.Context, user *models.User)
	Resend(ctx context.Context, user *models.User, codeType models.VerificationCodeType) error
	Verify(ctx context.Context, user *models.User, code string) (*models.User, error)
}

// OAuthVerifier validates a provider-issued token and returns the identity
// it asserts.
type OAuthVerifier interface {
	Verify(ctx context.Context, provider, token string) (*OAuthIdentity, error)
}

// RegisterInput carries the fields accepted at signup.
type RegisterInput struct {
	Email    string
	Phone    string
	Password string
	FullName string
	Username string
}

// LoginResult bundles the authenticated user with their access token.
type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresIn time.Duration
}

// AuthService handles registration, login, and account verification.
type AuthService struct {
	userRepo     UserRepository
	verification Verifier
	oauth        OAuthVerifier
	tokens       TokenIssuer
	logger       *slog.Logger
}

func NewAuthService(
	userRepo UserRepository,
	verification Verifier,
	oauth OAuthVerifier,
	tokens TokenIssuer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		verification: verification,
		oauth:        oauth,
		tokens:       tokens,
		logger:       logger,
	}
}

// Register creates an unverified, inactive account and issues verification
// codes for both channels. The account stays inactive until both channels
// confirm. The password is optional; OAuth users set one later or never.
// Duplicate email or phone surfaces as ErrConflict; handlers translate it
// into a generic message so existing accounts cannot be enumerated.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	var passwordHash string
	if input.Password != "" {
		if err := auth.ValidatePassword(input.Password); err != nil {
			return nil, fmt.Errorf("%s: %w", err.Error(), models.ErrBadRequest)
		}

		hash, err := auth.HashPassword(input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash = hash
	}

	existing, err := s.userRepo.GetByEmailOrPhone(ctx, email, input.Phone)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing accounts: %w", err)
	}
	if existing != nil {
		s.logger.Info("registration with existing identifier",
			slog.String("email", logger.SanitizedEmail(email)))
		return nil, models.ErrConflict
	}

	user, err := s.userRepo.Create(ctx, &models.User{
		Email:        email,
		Phone:        input.Phone,
		Username:     input.Username,
		FullName:     input.FullName,
		PasswordHash: passwordHash,
		NotifyEmail:  true,
		NotifyPush:   true,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			// Lost a race with a concurrent registration for the same identifier.
			return nil, models.ErrConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.verification.IssueCodes(ctx, user)

	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", logger.SanitizedEmail(user.Email)))

	return user, nil
}

// Login authenticates email/password credentials and returns an access
// token. All credential failures collapse into ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	// OAuth-only accounts have no password to compare
	if user.PasswordHash == "" {
		return nil, models.ErrUnauthorized
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Warn("failed login attempt",
			slog.String("email", logger.SanitizedEmail(email)))
		return nil, models.ErrUnauthorized
	}

	// The credentials checked out, so telling the caller to finish
	// verification reveals nothing an attacker could not already learn.
	if !user.IsVerified {
		return nil, models.ErrForbidden
	}

	if !user.IsActive {
		return nil, models.ErrUnauthorized
	}

	return s.issueToken(user)
}

// OAuthLogin validates a provider token and signs the user in, creating the
// account on first sight. Provider-asserted emails count as verified, so
// OAuth users only need phone verification once they add a phone number.
func (s *AuthService) OAuthLogin(ctx context.Context, provider, token string) (*LoginResult, error) {
	identity, err := s.oauth.Verify(ctx, provider, token)
	if err != nil {
		s.logger.Warn("oauth token rejected",
			slog.String("provider", provider),
			slog.Any("error", err))
		return nil, models.ErrUnauthorized
	}

	user, err := s.userRepo.GetByOAuth(ctx, identity.Provider, identity.Subject)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up oauth account: %w", err)
	}

	if user == nil {
		user, err = s.linkOrCreateOAuthUser(ctx, identity)
		if err != nil {
			return nil, err
		}
	}

	if !user.IsActive {
		return nil, models.ErrUnauthorized
	}

	return s.issueToken(user)
}

// Resend re-issues verification codes for every channel the account has not
// yet confirmed. Keyed on email because unverified users cannot log in to
// obtain a token.
func (s *AuthService) Resend(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if user.IsVerified {
		return fmt.Errorf("account already verified: %w", models.ErrBadRequest)
	}

	if !user.EmailVerified {
		if err := s.verification.Resend(ctx, user, models.CodeTypeEmail); err != nil {
			return err
		}
	}
	if !user.PhoneVerified {
		if err := s.verification.Resend(ctx, user, models.CodeTypePhone); err != nil {
			return err
		}
	}

	return nil
}

// VerifyAccount redeems a submitted code for the account with the given
// email. Like Resend, this cannot require a token: verification is the
// gate in front of login.
func (s *AuthService) VerifyAccount(ctx context.Context, email, code string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return s.verification.Verify(ctx, user, code)
}

func (s *AuthService) issueToken(user *models.User) (*LoginResult, error) {
	token, err := s.tokens.GenerateToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))

	return &LoginResult{
		User:      user,
		Token:     token,
		ExpiresIn: s.tokens.AccessExpiry(),
	}, nil
}

// linkOrCreateOAuthUser attaches the identity to an existing account with
// the same email, or provisions a new one.
func (s *AuthService) linkOrCreateOAuthUser(ctx context.Context, identity *OAuthIdentity) (*models.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, identity.Email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up account by email: %w", err)
	}

	if existing != nil {
		if identity.EmailVerified && !existing.EmailVerified {
			existing.EmailVerified = true
			existing.SyncVerified()
			if _, err := s.userRepo.Update(ctx, existing.ID, existing); err != nil {
				return nil, fmt.Errorf("failed to update verification status: %w", err)
			}
		}

		linked, err := s.userRepo.LinkOAuth(ctx, existing.ID, identity.Provider, identity.Subject)
		if err != nil {
			return nil, fmt.Errorf("failed to link oauth identity: %w", err)
		}

		s.logger.Info("oauth identity linked",
			slog.String("user_id", linked.ID),
			slog.String("provider", identity.Provider))

		return linked, nil
	}

	user, err := s.userRepo.Create(ctx, &models.User{
		Email:         identity.Email,
		FullName:      identity.FullName,
		OAuthProvider: identity.Provider,
		OAuthID:       identity.Subject,
		IsActive:      true,
		EmailVerified: identity.EmailVerified,
		NotifyEmail:   true,
		NotifyPush:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth user: %w", err)
	}

	s.logger.Info("oauth account provisioned",
		slog.String("user_id", user.ID),
		slog.String("provider", identity.Provider))

	return user, nil
}
