package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flashoffers/api/internal/models"
	"github.com/flashoffers/api/internal/repositories"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByEmailOrPhone(ctx context.Context, email, phone string) (*models.User, error)
	GetByOAuth(ctx context.Context, provider, oauthID string) (*models.User, error)
	UsernameTaken(ctx context.Context, username, excludeUserID string) (bool, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id string, user *models.User) (*models.User, error)
	LinkOAuth(ctx context.Context, id, provider, oauthID string) (*models.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter repositories.UserFilter) ([]*models.User, error)
	ListPushTargets(ctx context.Context, userIDs []string) ([]*models.User, error)
	ListNotifiable(ctx context.Context) ([]*models.User, error)
	CountUsers(ctx context.Context) (total, verified, admins int64, err error)
}

// ProfileUpdate carries the optional profile fields a user may change.
// Nil pointers leave the current value untouched.
type ProfileUpdate struct {
	Username       *string
	FullName       *string
	NotifyEmail    *bool
	NotifySMS      *bool
	NotifyWhatsApp *bool
	NotifyTelegram *bool
	NotifyPush     *bool
}

// UserService handles profile management for authenticated users.
type UserService struct {
	userRepo UserRepository
	logger   *slog.Logger
}

func NewUserService(userRepo UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// UpdateProfile applies the provided fields to the user's profile. Username
// changes are checked for uniqueness against other accounts.
func (s *UserService) UpdateProfile(ctx context.Context, user *models.User, update ProfileUpdate) (*models.User, error) {
	if update.Username != nil && *update.Username != user.Username {
		if *update.Username != "" {
			taken, err := s.userRepo.UsernameTaken(ctx, *update.Username, user.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check username: %w", err)
			}
			if taken {
				return nil, models.ErrUsernameTaken
			}
		}
		user.Username = *update.Username
	}

	if update.FullName != nil {
		user.FullName = *update.FullName
	}
	if update.NotifyEmail != nil {
		user.NotifyEmail = *update.NotifyEmail
	}
	if update.NotifySMS != nil {
		user.NotifySMS = *update.NotifySMS
	}
	if update.NotifyWhatsApp != nil {
		user.NotifyWhatsApp = *update.NotifyWhatsApp
	}
	if update.NotifyTelegram != nil {
		user.NotifyTelegram = *update.NotifyTelegram
	}
	if update.NotifyPush != nil {
		user.NotifyPush = *update.NotifyPush
	}

	updated, err := s.userRepo.Update(ctx, user.ID, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("profile updated", slog.String("user_id", user.ID))

	return updated, nil
}

// ConnectTelegram links a Telegram chat to the account and enables the
// channel.
func (s *UserService) ConnectTelegram(ctx context.Context, user *models.User, chatID string) (*models.User, error) {
	if chatID == "" {
		return nil, fmt.Errorf("missing Telegram chat id: %w", models.ErrBadRequest)
	}

	user.TelegramChatID = chatID
	user.NotifyTelegram = true

	updated, err := s.userRepo.Update(ctx, user.ID, user)
	if err != nil {
		return nil, fmt.Errorf("failed to connect Telegram: %w", err)
	}

	s.logger.Info("telegram connected", slog.String("user_id", user.ID))

	return updated, nil
}

// DisconnectTelegram unlinks the chat and disables the channel.
func (s *UserService) DisconnectTelegram(ctx context.Context, user *models.User) (*models.User, error) {
	user.TelegramChatID = ""
	user.NotifyTelegram = false

	updated, err := s.userRepo.Update(ctx, user.ID, user)
	if err != nil {
		return nil, fmt.Errorf("failed to disconnect Telegram: %w", err)
	}

	s.logger.Info("telegram disconnected", slog.String("user_id", user.ID))

	return updated, nil
}
