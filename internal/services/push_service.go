package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/flashoffers/api/internal/models"
)

// PushSubscriptionRepository defines the interface for push subscription storage
type PushSubscriptionRepository interface {
	Upsert(ctx context.Context, userID, endpoint, p256dh, auth string) (*models.PushSubscription, error)
	Deactivate(ctx context.Context, userID, endpoint string) error
	DeactivateByID(ctx context.Context, id string) error
	ListActiveByUser(ctx context.Context, userID string) ([]*models.PushSubscription, error)
	CleanupInactive(ctx context.Context) (int64, error)
}

// pushTransport abstracts the wire protocol so delivery can be exercised
// without a real push service. Send returns the HTTP status reported by the
// push endpoint.
type pushTransport interface {
	Send(ctx context.Context, payload []byte, sub *models.PushSubscription) (int, error)
}

// webPushTransport delivers payloads with VAPID-signed Web Push requests.
type webPushTransport struct {
	subscriber      string
	vapidPublicKey  string
	vapidPrivateKey string
}

func (t *webPushTransport) Send(ctx context.Context, payload []byte, sub *models.PushSubscription) (int, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		Subscriber:      t.subscriber,
		VAPIDPublicKey:  t.vapidPublicKey,
		VAPIDPrivateKey: t.vapidPrivateKey,
		TTL:             30,
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}

// PushPayload is the JSON document handed to the service worker.
type PushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// PushResult summarizes a multi-subscription delivery.
type PushResult struct {
	Total     int
	Succeeded int
	Failed    int
}

// PushService manages browser push subscriptions and delivers Web Push
// notifications. Endpoints that report 404 or 410 are deactivated so dead
// browsers stop accumulating failures.
type PushService struct {
	subscriptionRepo PushSubscriptionRepository
	userRepo         UserRepository
	transport        pushTransport
	vapidPublicKey   string
	logger           *slog.Logger
}

func NewPushService(
	subscriptionRepo PushSubscriptionRepository,
	userRepo UserRepository,
	subscriber, vapidPublicKey, vapidPrivateKey string,
	logger *slog.Logger,
) *PushService {
	return &PushService{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		transport: &webPushTransport{
			subscriber:      subscriber,
			vapidPublicKey:  vapidPublicKey,
			vapidPrivateKey: vapidPrivateKey,
		},
		vapidPublicKey: vapidPublicKey,
		logger:         logger,
	}
}

// Enabled reports whether VAPID keys are configured.
func (s *PushService) Enabled() bool {
	return s.vapidPublicKey != ""
}

// PublicKey returns the VAPID public key browsers need to subscribe.
func (s *PushService) PublicKey() string {
	return s.vapidPublicKey
}

// Subscribe registers or refreshes a browser push subscription.
func (s *PushService) Subscribe(ctx context.Context, userID, endpoint, p256dh, auth string) (*models.PushSubscription, error) {
	if endpoint == "" || p256dh == "" || auth == "" {
		return nil, fmt.Errorf("incomplete push subscription: %w", models.ErrBadRequest)
	}

	sub, err := s.subscriptionRepo.Upsert(ctx, userID, endpoint, p256dh, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to save push subscription: %w", err)
	}

	s.logger.Info("push subscription registered",
		slog.String("user_id", userID),
		slog.String("subscription_id", sub.ID))

	return sub, nil
}

// Unsubscribe deactivates the subscription for the given endpoint.
func (s *PushService) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	return s.subscriptionRepo.Deactivate(ctx, userID, endpoint)
}

// Subscriptions lists a user's active push subscriptions.
func (s *PushService) Subscriptions(ctx context.Context, userID string) ([]*models.PushSubscription, error) {
	return s.subscriptionRepo.ListActiveByUser(ctx, userID)
}

// SendToUser pushes a payload to every active subscription of one user and
// reports whether at least one delivery succeeded.
func (s *PushService) SendToUser(ctx context.Context, userID string, payload PushPayload) (bool, error) {
	subs, err := s.subscriptionRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to list push subscriptions: %w", err)
	}

	if len(subs) == 0 {
		return false, nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("failed to encode push payload: %w", err)
	}

	delivered := false
	for _, sub := range subs {
		if s.push(ctx, body, sub) {
			delivered = true
		}
	}

	return delivered, nil
}

// SendToUsers fans a payload out to the push-opted-in subset of the given
// users. An empty id slice targets all push-enabled users.
func (s *PushService) SendToUsers(ctx context.Context, userIDs []string, payload PushPayload) (*PushResult, error) {
	users, err := s.userRepo.ListPushTargets(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list push targets: %w", err)
	}

	result := &PushResult{Total: len(users)}
	for _, user := range users {
		delivered, err := s.SendToUser(ctx, user.ID, payload)
		if err != nil {
			s.logger.Error("push delivery error",
				slog.String("user_id", user.ID),
				slog.Any("error", err))
			result.Failed++
			continue
		}
		if delivered {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	return result, nil
}

// BroadcastOffer pushes a new-offer notification to all push-enabled users.
func (s *PushService) BroadcastOffer(ctx context.Context, offer *models.Offer) (*PushResult, error) {
	return s.SendToUsers(ctx, nil, PushPayload{
		Title: "New offer on FlashOffers",
		Body:  OfferAnnouncement(offer),
		URL:   "/offers/" + offer.ID,
		Tag:   "offer-" + offer.ID,
	})
}

// CleanupInactive removes long-dead subscriptions; called from the
// background cleanup loop.
func (s *PushService) CleanupInactive(ctx context.Context) (int64, error) {
	return s.subscriptionRepo.CleanupInactive(ctx)
}

// push sends to one subscription and prunes endpoints the push service
// reports as gone.
func (s *PushService) push(ctx context.Context, body []byte, sub *models.PushSubscription) bool {
	status, err := s.transport.Send(ctx, body, sub)
	if err != nil {
		s.logger.Warn("push send failed",
			slog.String("subscription_id", sub.ID),
			slog.Any("error", err))
		return false
	}

	if status == http.StatusGone || status == http.StatusNotFound {
		s.logger.Info("pruning dead push subscription",
			slog.String("subscription_id", sub.ID),
			slog.Int("status", status))
		if err := s.subscriptionRepo.DeactivateByID(ctx, sub.ID); err != nil {
			s.logger.Error("failed to deactivate push subscription",
				slog.String("subscription_id", sub.ID),
				slog.Any("error", err))
		}
		return false
	}

	return status >= 200 && status < 300
}
