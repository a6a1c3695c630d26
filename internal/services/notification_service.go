package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flashoffers/api/internal/models"
	"github.com/flashoffers/api/pkg/logger"
)

// NotificationRepository defines the interface for the notification inbox
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID, notificationID string) error
}

// BroadcastResult summarizes a fan-out over the user base.
type BroadcastResult struct {
	Users     int
	Delivered int
}

// NotificationService routes messages to a user's opted-in channels and
// records delivered messages in the in-app inbox. Channel failures are
// swallowed: delivery is best-effort and a dead channel must never break
// the calling flow.
type NotificationService struct {
	notificationRepo NotificationRepository
	userRepo         UserRepository
	email            EmailSender
	sms              SMSSender
	telegram         TelegramSender
	logger           *slog.Logger
}

// NewNotificationService creates a NotificationService. Any sender may be
// nil when its credentials are not configured; the channel then reports
// delivery failure without attempting a send.
func NewNotificationService(
	notificationRepo NotificationRepository,
	userRepo UserRepository,
	email EmailSender,
	sms SMSSender,
	telegram TelegramSender,
	logger *slog.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		email:            email,
		sms:              sms,
		telegram:         telegram,
		logger:           logger,
	}
}

// Send delivers one message over one channel, honoring the user's opt-in
// for that channel, and records it in the inbox on success.
func (s *NotificationService) Send(ctx context.Context, user *models.User, notificationType models.NotificationType, message, offerID string) bool {
	if !s.channelEnabled(user, notificationType) {
		return false
	}

	if !s.deliver(ctx, user, notificationType, message) {
		return false
	}

	_, err := s.notificationRepo.Create(ctx, &models.Notification{
		UserID:  user.ID,
		OfferID: offerID,
		Type:    notificationType,
		Message: message,
	})
	if err != nil {
		// The message already went out; losing the inbox row is tolerable.
		s.logger.Error("failed to record notification",
			slog.String("user_id", user.ID),
			slog.String("type", string(notificationType)),
			slog.Any("error", err))
	}

	return true
}

// SendToUser fans a message out to every channel the user opted into and
// returns the number of successful deliveries.
func (s *NotificationService) SendToUser(ctx context.Context, user *models.User, message, offerID string) int {
	delivered := 0
	for _, t := range []models.NotificationType{
		models.NotificationEmail,
		models.NotificationSMS,
		models.NotificationWhatsApp,
		models.NotificationTelegram,
	} {
		if s.Send(ctx, user, t, message, offerID) {
			delivered++
		}
	}
	return delivered
}

// BroadcastNewOffer announces a freshly published offer to every active
// user with at least one outbound channel enabled.
func (s *NotificationService) BroadcastNewOffer(ctx context.Context, offer *models.Offer) (*BroadcastResult, error) {
	users, err := s.userRepo.ListNotifiable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifiable users: %w", err)
	}

	message := OfferAnnouncement(offer)

	result := &BroadcastResult{Users: len(users)}
	for _, user := range users {
		result.Delivered += s.SendToUser(ctx, user, message, offer.ID)
	}

	s.logger.Info("offer broadcast complete",
		slog.String("offer_id", offer.ID),
		slog.Int("users", result.Users),
		slog.Int("delivered", result.Delivered))

	return result, nil
}

// ListInbox returns the user's stored notifications, newest first.
func (s *NotificationService) ListInbox(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID, unreadOnly)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.notificationRepo.MarkRead(ctx, userID, notificationID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	return s.notificationRepo.Delete(ctx, userID, notificationID)
}

func (s *NotificationService) channelEnabled(user *models.User, t models.NotificationType) bool {
	switch t {
	case models.NotificationEmail:
		return user.NotifyEmail
	case models.NotificationSMS:
		return user.NotifySMS
	case models.NotificationWhatsApp:
		return user.NotifyWhatsApp
	case models.NotificationTelegram:
		return user.NotifyTelegram && user.TelegramChatID != ""
	default:
		return false
	}
}

// deliver performs the raw channel send and converts any failure into a
// logged false.
func (s *NotificationService) deliver(ctx context.Context, user *models.User, t models.NotificationType, message string) bool {
	var err error

	switch t {
	case models.NotificationEmail:
		if s.email == nil {
			return false
		}
		err = s.email.Send(ctx, user.Email, "New offer on FlashOffers", message)
	case models.NotificationSMS:
		if s.sms == nil {
			return false
		}
		err = s.sms.SendSMS(ctx, user.Phone, message)
	case models.NotificationWhatsApp:
		if s.sms == nil {
			return false
		}
		err = s.sms.SendWhatsApp(ctx, user.Phone, message)
	case models.NotificationTelegram:
		if s.telegram == nil {
			return false
		}
		err = s.telegram.Send(ctx, user.TelegramChatID, message)
	default:
		return false
	}

	if err != nil {
		s.logger.Warn("notification delivery failed",
			slog.String("user_id", user.ID),
			slog.String("type", string(t)),
			slog.String("email", logger.SanitizedEmail(user.Email)),
			slog.Any("error", err))
		return false
	}

	return true
}

// OfferAnnouncement renders the broadcast message for a new offer.
func OfferAnnouncement(offer *models.Offer) string {
	msg := fmt.Sprintf("New offer: %s from %s", offer.Title, offer.ProviderName)

	switch {
	case offer.DiscountPercentage != nil:
		msg += fmt.Sprintf(" - %.0f%% off", *offer.DiscountPercentage)
	case offer.DiscountAmount != nil:
		msg += fmt.Sprintf(" - %.2f off", *offer.DiscountAmount)
	}

	msg += fmt.Sprintf(". Expires %s.", offer.ExpiryDate.Format("Jan 2, 2006"))
	return msg
}
