package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flashoffers/api/internal/auth"
	"github.com/flashoffers/api/internal/models"
	"github.com/flashoffers/api/internal/repositories"
	"github.com/flashoffers/api/internal/services"
	pkghttp "github.com/flashoffers/api/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithUserContext attaches an authenticated user to the request context
func WithUserContext(req *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(req.Context(), auth.UserContextKey, user)
	return req.WithContext(ctx)
}

// WithURLParam injects a chi URL parameter into the request context
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// TestUser returns a fully verified active user for handler tests
func TestUser(id, email string) *models.User {
	now := time.Now()
	return &models.User{
		ID:            id,
		Email:         email,
		Phone:         "+15550001111",
		IsActive:      true,
		IsVerified:    true,
		EmailVerified: true,
		PhoneVerified: true,
		NotifyEmail:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// TestAdmin returns an admin user for handler tests
func TestAdmin(id, email string) *models.User {
	user := TestUser(id, email)
	user.IsAdmin = true
	return user
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	RegisterFunc      func(ctx context.Context, input services.RegisterInput) (*models.User, error)
	LoginFunc         func(ctx context.Context, email, password string) (*services.LoginResult, error)
	OAuthLoginFunc    func(ctx context.Context, provider, token string) (*services.LoginResult, error)
	ResendFunc        func(ctx context.Context, email string) error
	VerifyAccountFunc func(ctx context.Context, email, code string) (*models.User, error)
}

func (m *MockAuthService) Register(ctx context.Context, input services.RegisterInput) (*models.User, error) {
	return m.RegisterFunc(ctx, input)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*services.LoginResult, error) {
	return m.LoginFunc(ctx, email, password)
}

func (m *MockAuthService) OAuthLogin(ctx context.Context, provider, token string) (*services.LoginResult, error) {
	return m.OAuthLoginFunc(ctx, provider, token)
}

func (m *MockAuthService) Resend(ctx context.Context, email string) error {
	return m.ResendFunc(ctx, email)
}

func (m *MockAuthService) VerifyAccount(ctx context.Context, email, code string) (*models.User, error) {
	return m.VerifyAccountFunc(ctx, email, code)
}

// MockOfferService implements OfferServiceInterface for testing
type MockOfferService struct {
	NextEligibleFunc func(ctx context.Context, userID string, category *models.OfferCategory) (*models.Offer, error)
	ListEligibleFunc func(ctx context.Context, userID string, category *models.OfferCategory) ([]*models.Offer, error)
	SwipeFunc        func(ctx context.Context, userID, offerID string, action models.SwipeAction) (*models.UserLike, error)
	UnswipeFunc      func(ctx context.Context, userID, offerID string) error
	LikedOffersFunc  func(ctx context.Context, userID string) ([]*models.Offer, error)
	LikedOfferFunc   func(ctx context.Context, userID, offerID string) (*models.Offer, error)
}

func (m *MockOfferService) NextEligible(ctx context.Context, userID string, category *models.OfferCategory) (*models.Offer, error) {
	return m.NextEligibleFunc(ctx, userID, category)
}

func (m *MockOfferService) ListEligible(ctx context.Context, userID string, category *models.OfferCategory) ([]*models.Offer, error) {
	return m.ListEligibleFunc(ctx, userID, category)
}

func (m *MockOfferService) Swipe(ctx context.Context, userID, offerID string, action models.SwipeAction) (*models.UserLike, error) {
	return m.SwipeFunc(ctx, userID, offerID, action)
}

func (m *MockOfferService) Unswipe(ctx context.Context, userID, offerID string) error {
	return m.UnswipeFunc(ctx, userID, offerID)
}

func (m *MockOfferService) LikedOffers(ctx context.Context, userID string) ([]*models.Offer, error) {
	return m.LikedOffersFunc(ctx, userID)
}

func (m *MockOfferService) LikedOffer(ctx context.Context, userID, offerID string) (*models.Offer, error) {
	return m.LikedOfferFunc(ctx, userID, offerID)
}

// MockUserService implements UserServiceInterface for testing
type MockUserService struct {
	UpdateProfileFunc      func(ctx context.Context, user *models.User, update services.ProfileUpdate) (*models.User, error)
	ConnectTelegramFunc    func(ctx context.Context, user *models.User, chatID string) (*models.User, error)
	DisconnectTelegramFunc func(ctx context.Context, user *models.User) (*models.User, error)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, user *models.User, update services.ProfileUpdate) (*models.User, error) {
	return m.UpdateProfileFunc(ctx, user, update)
}

func (m *MockUserService) ConnectTelegram(ctx context.Context, user *models.User, chatID string) (*models.User, error) {
	return m.ConnectTelegramFunc(ctx, user, chatID)
}

func (m *MockUserService) DisconnectTelegram(ctx context.Context, user *models.User) (*models.User, error) {
	return m.DisconnectTelegramFunc(ctx, user)
}

// MockNotificationService implements NotificationServiceInterface for testing
type MockNotificationService struct {
	ListInboxFunc          func(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error)
	MarkReadFunc           func(ctx context.Context, userID, notificationID string) error
	MarkAllReadFunc        func(ctx context.Context, userID string) error
	DeleteNotificationFunc func(ctx context.Context, userID, notificationID string) error
}

func (m *MockNotificationService) ListInbox(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	return m.ListInboxFunc(ctx, userID, unreadOnly)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	return m.MarkReadFunc(ctx, userID, notificationID)
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return m.MarkAllReadFunc(ctx, userID)
}

func (m *MockNotificationService) DeleteNotification(ctx context.Context, userID, notificationID string) error {
	return m.DeleteNotificationFunc(ctx, userID, notificationID)
}

// MockPushService implements PushServiceInterface for testing
type MockPushService struct {
	EnabledFunc     func() bool
	PublicKeyFunc   func() string
	SubscribeFunc     func(ctx context.Context, userID, endpoint, p256dh, auth string) (*models.PushSubscription, error)
	UnsubscribeFunc   func(ctx context.Context, userID, endpoint string) error
	SubscriptionsFunc func(ctx context.Context, userID string) ([]*models.PushSubscription, error)
	SendToUserFunc    func(ctx context.Context, userID string, payload services.PushPayload) (bool, error)
}

func (m *MockPushService) Enabled() bool {
	if m.EnabledFunc != nil {
		return m.EnabledFunc()
	}
	return true
}

func (m *MockPushService) PublicKey() string {
	if m.PublicKeyFunc != nil {
		return m.PublicKeyFunc()
	}
	return "test-vapid-public-key"
}

func (m *MockPushService) Subscribe(ctx context.Context, userID, endpoint, p256dh, auth string) (*models.PushSubscription, error) {
	return m.SubscribeFunc(ctx, userID, endpoint, p256dh, auth)
}

func (m *MockPushService) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	return m.UnsubscribeFunc(ctx, userID, endpoint)
}

func (m *MockPushService) Subscriptions(ctx context.Context, userID string) ([]*models.PushSubscription, error) {
	return m.SubscriptionsFunc(ctx, userID)
}

func (m *MockPushService) SendToUser(ctx context.Context, userID string, payload services.PushPayload) (bool, error) {
	return m.SendToUserFunc(ctx, userID, payload)
}

// MockAdminService implements AdminServiceInterface for testing
type MockAdminService struct {
	ListUsersFunc   func(ctx context.Context, filter repositories.UserFilter) ([]*models.User, error)
	GetUserFunc     func(ctx context.Context, id string) (*models.User, error)
	UpdateUserFunc  func(ctx context.Context, admin *models.User, targetID string, update services.AdminUserUpdate) (*models.User, error)
	DeleteUserFunc  func(ctx context.Context, admin *models.User, targetID string) error
	ListOffersFunc  func(ctx context.Context, filter repositories.OfferFilter) ([]*models.Offer, error)
	GetOfferFunc    func(ctx context.Context, id string) (*models.Offer, error)
	CreateOfferFunc func(ctx context.Context, admin *models.User, offer *models.Offer) (*models.Offer, error)
	UpdateOfferFunc func(ctx context.Context, admin *models.User, id string, offer *models.Offer) (*models.Offer, error)
	DeleteOfferFunc func(ctx context.Context, admin *models.User, id string) error
	ListActionsFunc func(ctx context.Context, filter repositories.ActionFilter) ([]*models.AdminAction, error)
	StatsFunc       func(ctx context.Context) (*services.AdminStats, error)
}

func (m *MockAdminService) ListUsers(ctx context.Context, filter repositories.UserFilter) ([]*models.User, error) {
	return m.ListUsersFunc(ctx, filter)
}

func (m *MockAdminService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return m.GetUserFunc(ctx, id)
}

func (m *MockAdminService) UpdateUser(ctx context.Context, admin *models.User, targetID string, update services.AdminUserUpdate) (*models.User, error) {
	return m.UpdateUserFunc(ctx, admin, targetID, update)
}

func (m *MockAdminService) DeleteUser(ctx context.Context, admin *models.User, targetID string) error {
	return m.DeleteUserFunc(ctx, admin, targetID)
}

func (m *MockAdminService) ListOffers(ctx context.Context, filter repositories.OfferFilter) ([]*models.Offer, error) {
	return m.ListOffersFunc(ctx, filter)
}

func (m *MockAdminService) GetOffer(ctx context.Context, id string) (*models.Offer, error) {
	return m.GetOfferFunc(ctx, id)
}

func (m *MockAdminService) CreateOffer(ctx context.Context, admin *models.User, offer *models.Offer) (*models.Offer, error) {
	return m.CreateOfferFunc(ctx, admin, offer)
}

func (m *MockAdminService) UpdateOffer(ctx context.Context, admin *models.User, id string, offer *models.Offer) (*models.Offer, error) {
	return m.UpdateOfferFunc(ctx, admin, id, offer)
}

func (m *MockAdminService) DeleteOffer(ctx context.Context, admin *models.User, id string) error {
	return m.DeleteOfferFunc(ctx, admin, id)
}

func (m *MockAdminService) ListActions(ctx context.Context, filter repositories.ActionFilter) ([]*models.AdminAction, error) {
	return m.ListActionsFunc(ctx, filter)
}

func (m *MockAdminService) Stats(ctx context.Context) (*services.AdminStats, error) {
	return m.StatsFunc(ctx)
}
