package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/flashoffers/api/internal/models"
	"github.com/flashoffers/api/pkg/logger"
)

// VerificationCodeRepository defines the interface for verification code storage
type VerificationCodeRepository interface {
	Create(ctx context.Context, userID, code string, codeType models.VerificationCodeType, expiresAt time.Time) (*models.VerificationCode, error)
	Consume(ctx context.Context, userID, code string, codeType models.VerificationCodeType) (bool, error)
	InvalidateByType(ctx context.Context, userID string, codeType models.VerificationCodeType) error
	CleanupExpired(ctx context.Context) (int64, error)
}

// VerificationService issues and redeems the 6-digit codes that confirm a
// user's email address and phone number.
type VerificationService struct {
	codeRepo VerificationCodeRepository
	userRepo UserRepository
	email    EmailSender
	sms      SMSSender
	logger   *slog.Logger
	codeTTL  time.Duration
}

func NewVerificationService(
	codeRepo VerificationCodeRepository,
	userRepo UserRepository,
	email EmailSender,
	sms SMSSender,
	logger *slog.Logger,
	codeTTL time.Duration,
) *VerificationService {
	return &VerificationService{
		codeRepo: codeRepo,
		userRepo: userRepo,
		email:    email,
		sms:      sms,
		logger:   logger,
		codeTTL:  codeTTL,
	}
}

// GenerateCode returns a uniformly random 6-digit code with leading zeros
// preserved.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// IssueCodes creates and delivers fresh email and phone codes for a newly
// registered user. Delivery problems are logged, not returned: registration
// must succeed even when a channel is down, and the user can request a
// resend.
func (s *VerificationService) IssueCodes(ctx context.Context, user *models.User) {
	if err := s.issue(ctx, user, models.CodeTypeEmail); err != nil {
		s.logger.Error("failed to issue email verification code",
			slog.String("user_id", user.ID),
			slog.String("email", logger.SanitizedEmail(user.Email)),
			slog.Any("error", err))
	}
	if err := s.issue(ctx, user, models.CodeTypePhone); err != nil {
		s.logger.Error("failed to issue phone verification code",
			slog.String("user_id", user.ID),
			slog.String("phone", logger.SanitizedPhone(user.Phone)),
			slog.Any("error", err))
	}
}

// Resend invalidates any outstanding codes of the requested type and issues
// a new one, so only the latest code is redeemable.
func (s *VerificationService) Resend(ctx context.Context, user *models.User, codeType models.VerificationCodeType) error {
	if err := s.codeRepo.InvalidateByType(ctx, user.ID, codeType); err != nil {
		return fmt.Errorf("failed to invalidate previous codes: %w", err)
	}

	if err := s.issue(ctx, user, codeType); err != nil {
		return err
	}

	s.logger.Info("verification code resent",
		slog.String("user_id", user.ID),
		slog.String("type", string(codeType)))

	return nil
}

// Verify redeems a submitted code against both channels: a code issued for
// email confirms the email address, a code issued for phone confirms the
// phone number. Full verification unlocks once both flags are set.
func (s *VerificationService) Verify(ctx context.Context, user *models.User, code string) (*models.User, error) {
	matched := false

	for _, codeType := range []models.VerificationCodeType{models.CodeTypeEmail, models.CodeTypePhone} {
		consumed, err := s.codeRepo.Consume(ctx, user.ID, code, codeType)
		if err != nil {
			return nil, fmt.Errorf("failed to consume verification code: %w", err)
		}
		if !consumed {
			continue
		}

		matched = true
		switch codeType {
		case models.CodeTypeEmail:
			user.EmailVerified = true
		case models.CodeTypePhone:
			user.PhoneVerified = true
		}
	}

	if !matched {
		s.logger.Warn("verification attempt with invalid code",
			slog.String("user_id", user.ID))
		return nil, models.ErrInvalidCode
	}

	user.SyncVerified()

	updated, err := s.userRepo.Update(ctx, user.ID, user)
	if err != nil {
		return nil, fmt.Errorf("failed to update verification status: %w", err)
	}

	s.logger.Info("verification code redeemed",
		slog.String("user_id", user.ID),
		slog.Bool("email_verified", updated.EmailVerified),
		slog.Bool("phone_verified", updated.PhoneVerified),
		slog.Bool("verified", updated.IsVerified))

	return updated, nil
}

// CleanupExpired removes stale codes; called from the background cleanup loop.
func (s *VerificationService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.codeRepo.CleanupExpired(ctx)
}

func (s *VerificationService) issue(ctx context.Context, user *models.User, codeType models.VerificationCodeType) error {
	code, err := GenerateCode()
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(s.codeTTL)
	if _, err := s.codeRepo.Create(ctx, user.ID, code, codeType, expiresAt); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	minutes := int(s.codeTTL.Minutes())
	message := fmt.Sprintf("Your FlashOffers verification code is %s. It expires in %d minutes.", code, minutes)

	switch codeType {
	case models.CodeTypeEmail:
		if s.email == nil {
			return fmt.Errorf("email channel not configured")
		}
		if err := s.email.Send(ctx, user.Email, "Verify your FlashOffers account", message); err != nil {
			return err
		}
	case models.CodeTypePhone:
		if s.sms == nil {
			return fmt.Errorf("sms channel not configured")
		}
		if err := s.sms.SendSMS(ctx, user.Phone, message); err != nil {
			return err
		}
	}

	return nil
}
