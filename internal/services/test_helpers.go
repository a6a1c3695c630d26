package services

import (
	"context"
	"time"

	"github.com/flashoffers/api/internal/models"
	"github.com/flashoffers/api/internal/repositories"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc           func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc        func(ctx context.Context, email string) (*models.User, error)
	GetByEmailOrPhoneFunc func(ctx context.Context, email, phone string) (*models.User, error)
	GetByOAuthFunc        func(ctx context.Context, provider, oauthID string) (*models.User, error)
	UsernameTakenFunc     func(ctx context.Context, username, excludeUserID string) (bool, error)
	CreateFunc            func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc            func(ctx context.Context, id string, user *models.User) (*models.User, error)
	LinkOAuthFunc         func(ctx context.Context, id, provider, oauthID string) (*models.User, error)
	DeleteFunc            func(ctx context.Context, id string) error
	ListFunc              func(ctx context.Context, filter repositories.UserFilter) ([]*models.User, error)
	ListPushTargetsFunc   func(ctx context.Context, userIDs []string) ([]*models.User, error)
	ListNotifiableFunc    func(ctx context.Context) ([]*models.User, error)
	CountUsersFunc        func(ctx context.Context) (int64, int64, int64, error)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmailOrPhone(ctx context.Context, email, phone string) (*models.User, error) {
	if m.GetByEmailOrPhoneFunc != nil {
		return m.GetByEmailOrPhoneFunc(ctx, email, phone)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByOAuth(ctx context.Context, provider, oauthID string) (*models.User, error) {
	if m.GetByOAuthFunc != nil {
		return m.GetByOAuthFunc(ctx, provider, oauthID)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) UsernameTaken(ctx context.Context, username, excludeUserID string) (bool, error) {
	if m.UsernameTakenFunc != nil {
		return m.UsernameTakenFunc(ctx, username, excludeUserID)
	}
	return false, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	user.ID = "user_123"
	return user, nil
}

func (m *MockUserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, user)
	}
	return user, nil
}

func (m *MockUserRepository) LinkOAuth(ctx context.Context, id, provider, oauthID string) (*models.User, error) {
	if m.LinkOAuthFunc != nil {
		return m.LinkOAuthFunc(ctx, id, provider, oauthID)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, filter repositories.UserFilter) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) ListPushTargets(ctx context.Context, userIDs []string) ([]*models.User, error) {
	if m.ListPushTargetsFunc != nil {
		return m.ListPushTargetsFunc(ctx, userIDs)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) ListNotifiable(ctx context.Context) ([]*models.User, error) {
	if m.ListNotifiableFunc != nil {
		return m.ListNotifiableFunc(ctx)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) CountUsers(ctx context.Context) (int64, int64, int64, error) {
	if m.CountUsersFunc != nil {
		return m.CountUsersFunc(ctx)
	}
	return 0, 0, 0, nil
}

// MockVerificationCodeRepository implements VerificationCodeRepository for testing
type MockVerificationCodeRepository struct {
	CreateFunc           func(ctx context.Context, userID, code string, codeType models.VerificationCodeType, expiresAt time.Time) (*models.VerificationCode, error)
	ConsumeFunc          func(ctx context.Context, userID, code string, codeType models.VerificationCodeType) (bool, error)
	InvalidateByTypeFunc func(ctx context.Context, userID string, codeType models.VerificationCodeType) error
	CleanupExpiredFunc   func(ctx context.Context) (int64, error)
}

func (m *MockVerificationCodeRepository) Create(ctx context.Context, userID, code string, codeType models.VerificationCodeType, expiresAt time.Time) (*models.VerificationCode, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, code, codeType, expiresAt)
	}
	return &models.VerificationCode{ID: "code_123", UserID: userID, Code: code, Type: codeType, ExpiresAt: expiresAt}, nil
}

func (m *MockVerificationCodeRepository) Consume(ctx context.Context, userID, code string, codeType models.VerificationCodeType) (bool, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, userID, code, codeType)
	}
	return false, nil
}

func (m *MockVerificationCodeRepository) InvalidateByType(ctx context.Context, userID string, codeType models.VerificationCodeType) error {
	if m.InvalidateByTypeFunc != nil {
		return m.InvalidateByTypeFunc(ctx, userID, codeType)
	}
	return nil
}

func (m *MockVerificationCodeRepository) CleanupExpired(ctx context.Context) (int64, error) {
	if m.CleanupExpiredFunc != nil {
		return m.CleanupExpiredFunc(ctx)
	}
	return 0, nil
}

// MockNotificationRepository implements NotificationRepository for testing
type MockNotificationRepository struct {
	CreateFunc      func(ctx context.Context, n *models.Notification) (*models.Notification, error)
	ListByUserFunc  func(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error)
	MarkReadFunc    func(ctx context.Context, userID, notificationID string) error
	MarkAllReadFunc func(ctx context.Context, userID string) error
	DeleteFunc      func(ctx context.Context, userID, notificationID string) error
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, n)
	}
	n.ID = "notification_123"
	return n, nil
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, unreadOnly)
	}
	return []*models.Notification{}, nil
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID, notificationID string) error {
	if m.MarkReadFunc != nil {
		return m.MarkReadFunc(ctx, userID, notificationID)
	}
	return nil
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	if m.MarkAllReadFunc != nil {
		return m.MarkAllReadFunc(ctx, userID)
	}
	return nil
}

func (m *MockNotificationRepository) Delete(ctx context.Context, userID, notificationID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, notificationID)
	}
	return nil
}

// MockPushSubscriptionRepository implements PushSubscriptionRepository for testing
type MockPushSubscriptionRepository struct {
	UpsertFunc           func(ctx context.Context, userID, endpoint, p256dh, auth string) (*models.PushSubscription, error)
	DeactivateFunc       func(ctx context.Context, userID, endpoint string) error
	DeactivateByIDFunc   func(ctx context.Context, id string) error
	ListActiveByUserFunc func(ctx context.Context, userID string) ([]*models.PushSubscription, error)
	CleanupInactiveFunc  func(ctx context.Context) (int64, error)
}

func (m *MockPushSubscriptionRepository) Upsert(ctx context.Context, userID, endpoint, p256dh, auth string) (*models.PushSubscription, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, userID, endpoint, p256dh, auth)
	}
	return &models.PushSubscription{ID: "sub_123", UserID: userID, Endpoint: endpoint, P256dhKey: p256dh, AuthKey: auth, IsActive: true}, nil
}

func (m *MockPushSubscriptionRepository) Deactivate(ctx context.Context, userID, endpoint string) error {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, userID, endpoint)
	}
	return nil
}

func (m *MockPushSubscriptionRepository) DeactivateByID(ctx context.Context, id string) error {
	if m.DeactivateByIDFunc != nil {
		return m.DeactivateByIDFunc(ctx, id)
	}
	return nil
}

func (m *MockPushSubscriptionRepository) ListActiveByUser(ctx context.Context, userID string) ([]*models.PushSubscription, error) {
	if m.ListActiveByUserFunc != nil {
		return m.ListActiveByUserFunc(ctx, userID)
	}
	return []*models.PushSubscription{}, nil
}

func (m *MockPushSubscriptionRepository) CleanupInactive(ctx context.Context) (int64, error) {
	if m.CleanupInactiveFunc != nil {
		return m.CleanupInactiveFunc(ctx)
	}
	return 0, nil
}

// MockOfferRepository implements OfferRepository for testing
type MockOfferRepository struct {
	GetByIDFunc      func(ctx context.Context, id string) (*models.Offer, error)
	ListEligibleFunc func(ctx context.Context, userID string, category *models.OfferCategory) ([]*models.Offer, error)
	NextEligibleFunc func(ctx context.Context, userID string, category *models.OfferCategory) (*models.Offer, error)
	ListLikedFunc    func(ctx context.Context, userID string) ([]*models.Offer, error)
	GetLikedFunc     func(ctx context.Context, userID, offerID string) (*models.Offer, error)
}

func (m *MockOfferRepository) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockOfferRepository) ListEligible(ctx context.Context, userID string, category *models.OfferCategory) ([]*models.Offer, error) {
	if m.ListEligibleFunc != nil {
		return m.ListEligibleFunc(ctx, userID, category)
	}
	return []*models.Offer{}, nil
}

func (m *MockOfferRepository) NextEligible(ctx context.Context, userID string, category *models.OfferCategory) (*models.Offer, error) {
	if m.NextEligibleFunc != nil {
		return m.NextEligibleFunc(ctx, userID, category)
	}
	return nil, models.ErrNotFound
}

func (m *MockOfferRepository) ListLiked(ctx context.Context, userID string) ([]*models.Offer, error) {
	if m.ListLikedFunc != nil {
		return m.ListLikedFunc(ctx, userID)
	}
	return []*models.Offer{}, nil
}

func (m *MockOfferRepository) GetLiked(ctx context.Context, userID, offerID string) (*models.Offer, error) {
	if m.GetLikedFunc != nil {
		return m.GetLikedFunc(ctx, userID, offerID)
	}
	return nil, models.ErrNotFound
}

// MockSwipeRepository implements SwipeRepository for testing
type MockSwipeRepository struct {
	CreateFunc            func(ctx context.Context, like *models.UserLike) (*models.UserLike, error)
	GetByUserAndOfferFunc func(ctx context.Context, userID, offerID string) (*models.UserLike, error)
	DeleteFunc            func(ctx context.Context, userID, offerID string) error
}

func (m *MockSwipeRepository) Create(ctx context.Context, like *models.UserLike) (*models.UserLike, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, like)
	}
	like.ID = "like_123"
	return like, nil
}

func (m *MockSwipeRepository) GetByUserAndOffer(ctx context.Context, userID, offerID string) (*models.UserLike, error) {
	if m.GetByUserAndOfferFunc != nil {
		return m.GetByUserAndOfferFunc(ctx, userID, offerID)
	}
	return nil, models.ErrNotFound
}

func (m *MockSwipeRepository) Delete(ctx context.Context, userID, offerID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, offerID)
	}
	return nil
}

// MockOfferAdminRepository implements OfferAdminRepository for testing
type MockOfferAdminRepository struct {
	GetByIDFunc     func(ctx context.Context, id string) (*models.Offer, error)
	ListFunc        func(ctx context.Context, filter repositories.OfferFilter) ([]*models.Offer, error)
	CreateFunc      func(ctx context.Context, offer *models.Offer) (*models.Offer, error)
	UpdateFunc      func(ctx context.Context, id string, offer *models.Offer) (*models.Offer, error)
	DeleteFunc      func(ctx context.Context, id string) error
	CountOffersFunc func(ctx context.Context) (int64, int64, error)
}

func (m *MockOfferAdminRepository) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockOfferAdminRepository) List(ctx context.Context, filter repositories.OfferFilter) ([]*models.Offer, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []*models.Offer{}, nil
}

func (m *MockOfferAdminRepository) Create(ctx context.Context, offer *models.Offer) (*models.Offer, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, offer)
	}
	offer.ID = "offer_123"
	return offer, nil
}

func (m *MockOfferAdminRepository) Update(ctx context.Context, id string, offer *models.Offer) (*models.Offer, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, offer)
	}
	return offer, nil
}

func (m *MockOfferAdminRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockOfferAdminRepository) CountOffers(ctx context.Context) (int64, int64, error) {
	if m.CountOffersFunc != nil {
		return m.CountOffersFunc(ctx)
	}
	return 0, 0, nil
}

// MockAuditRepository implements AuditRepository for testing
type MockAuditRepository struct {
	CreateFunc func(ctx context.Context, action *models.AdminAction) (*models.AdminAction, error)
	ListFunc   func(ctx context.Context, filter repositories.ActionFilter) ([]*models.AdminAction, error)
}

func (m *MockAuditRepository) Create(ctx context.Context, action *models.AdminAction) (*models.AdminAction, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, action)
	}
	action.ID = "action_123"
	return action, nil
}

func (m *MockAuditRepository) List(ctx context.Context, filter repositories.ActionFilter) ([]*models.AdminAction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []*models.AdminAction{}, nil
}

// MockSwipeCounter implements SwipeCounter for testing
type MockSwipeCounter struct {
	CountByActionFunc func(ctx context.Context) (int64, int64, error)
}

func (m *MockSwipeCounter) CountByAction(ctx context.Context) (int64, int64, error) {
	if m.CountByActionFunc != nil {
		return m.CountByActionFunc(ctx)
	}
	return 0, 0, nil
}

// MockEmailSender implements EmailSender for testing
type MockEmailSender struct {
	SendFunc func(ctx context.Context, to, subject, body string) error
}

func (m *MockEmailSender) Send(ctx context.Context, to, subject, body string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, body)
	}
	return nil
}

// MockSMSSender implements SMSSender for testing
type MockSMSSender struct {
	SendSMSFunc      func(ctx context.Context, to, body string) error
	SendWhatsAppFunc func(ctx context.Context, to, body string) error
}

func (m *MockSMSSender) SendSMS(ctx context.Context, to, body string) error {
	if m.SendSMSFunc != nil {
		return m.SendSMSFunc(ctx, to, body)
	}
	return nil
}

func (m *MockSMSSender) SendWhatsApp(ctx context.Context, to, body string) error {
	if m.SendWhatsAppFunc != nil {
		return m.SendWhatsAppFunc(ctx, to, body)
	}
	return nil
}

// MockTelegramSender implements TelegramSender for testing
type MockTelegramSender struct {
	SendFunc func(ctx context.Context, chatID, body string) error
}

func (m *MockTelegramSender) Send(ctx context.Context, chatID, body string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, chatID, body)
	}
	return nil
}

// mockPushTransport implements pushTransport for testing
type mockPushTransport struct {
	SendFunc func(ctx context.Context, payload []byte, sub *models.PushSubscription) (int, error)
}

func (m *mockPushTransport) Send(ctx context.Context, payload []byte, sub *models.PushSubscription) (int, error) {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, payload, sub)
	}
	return 201, nil
}

// MockVerifier implements Verifier for testing
type MockVerifier struct {
	IssueCodesFunc func(ctx context.Context, user *models.User)
	ResendFunc     func(ctx context.Context, user *models.User, codeType models.VerificationCodeType) error
	VerifyFunc     func(ctx context.Context, user *models.User, code string) (*models.User, error)
}

func (m *MockVerifier) IssueCodes(ctx context.Context, user *models.User) {
	if m.IssueCodesFunc != nil {
		m.IssueCodesFunc(ctx, user)
	}
}

func (m *MockVerifier) Resend(ctx context.Context, user *models.User, codeType models.VerificationCodeType) error {
	if m.ResendFunc != nil {
		return m.ResendFunc(ctx, user, codeType)
	}
	return nil
}

func (m *MockVerifier) Verify(ctx context.Context, user *models.User, code string) (*models.User, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, user, code)
	}
	return nil, models.ErrInvalidCode
}

// MockOAuthVerifier implements OAuthVerifier for testing
type MockOAuthVerifier struct {
	VerifyFunc func(ctx context.Context, provider, token string) (*OAuthIdentity, error)
}

func (m *MockOAuthVerifier) Verify(ctx context.Context, provider, token string) (*OAuthIdentity, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, provider, token)
	}
	return nil, models.ErrUnauthorized
}

// MockTokenIssuer implements TokenIssuer for testing
type MockTokenIssuer struct {
	GenerateTokenFunc func(email string) (string, error)
}

func (m *MockTokenIssuer) GenerateToken(email string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(email)
	}
	return "test-token", nil
}

func (m *MockTokenIssuer) AccessExpiry() time.Duration {
	return 30 * time.Minute
}

// NewTestUser creates a verified, active user for tests
func NewTestUser(id, email, phone string) *models.User {
	now := time.Now()
	return &models.User{
		ID:            id,
		Email:         email,
		Phone:         phone,
		IsActive:      true,
		IsVerified:    true,
		EmailVerified: true,
		PhoneVerified: true,
		NotifyEmail:   true,
		NotifySMS:     true,
		NotifyPush:    true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// NewTestOffer creates a live offer expiring in 24 hours
func NewTestOffer(id, title string) *models.Offer {
	now := time.Now()
	return &models.Offer{
		ID:           id,
		Title:        title,
		ProviderName: "Test Provider",
		Category:     models.CategoryEcommerce,
		ExpiryDate:   now.Add(24 * time.Hour),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
