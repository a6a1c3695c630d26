package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/flashoffers/api/internal/auth"
	"github.com/flashoffers/api/internal/database"
	"github.com/flashoffers/api/internal/handlers"
	"github.com/flashoffers/api/internal/routes"
	"github.com/flashoffers/api/internal/services"
)

// SentMessage is one captured outbound notification
type SentMessage struct {
	Channel string
	To      string
	Subject string
	Body    string
}

// RecordingSender captures outbound messages for test assertions. It stands
// in for the SES, Twilio and Telegram senders.
type RecordingSender struct {
	mu       sync.Mutex
	Messages []SentMessage
}

func (r *RecordingSender) record(msg SentMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, msg)
}

func (r *RecordingSender) Send(ctx context.Context, to, subject, body string) error {
	r.record(SentMessage{Channel: "email", To: to, Subject: subject, Body: body})
	return nil
}

func (r *RecordingSender) SendSMS(ctx context.Context, to, body string) error {
	r.record(SentMessage{Channel: "sms", To: to, Body: body})
	return nil
}

func (r *RecordingSender) SendWhatsApp(ctx context.Context, to, body string) error {
	r.record(SentMessage{Channel: "whatsapp", To: to, Body: body})
	return nil
}

// LastMessage returns the most recent captured message on a channel.
func (r *RecordingSender) LastMessage(channel string) *SentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Channel == channel {
			return &r.Messages[i]
		}
	}
	return nil
}

// TestServer wraps httptest.Server with the full service stack wired to a
// real database and recording senders.
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	Sender       *RecordingSender
	TokenManager *auth.TokenManager
	Repos        *Repositories
}

// NewTestServer builds a complete HTTP server against the given database.
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repos := InitializeRepositories(db)
	sender := &RecordingSender{}

	tokenManager := auth.NewTokenManager("test-secret-32-characters-long!!", 15*time.Minute)

	verificationService := services.NewVerificationService(
		repos.Codes, repos.Users, sender, sender, logger, 10*time.Minute)
	oauthService := services.NewOAuthService("", "", logger)
	authService := services.NewAuthService(repos.Users, verificationService, oauthService, tokenManager, logger)
	userService := services.NewUserService(repos.Users, logger)
	offerService := services.NewOfferService(repos.Offers, repos.Swipes, logger)
	notificationService := services.NewNotificationService(
		repos.Notifications, repos.Users, sender, sender, nil, logger)
	pushService := services.NewPushService(repos.Push, repos.Users, "mailto:test@example.com", "", "", logger)
	adminService := services.NewAdminService(
		repos.Users, repos.Offers, repos.Actions, repos.Swipes, notificationService, pushService, logger)
	// Broadcasts run in detached goroutines; keep assertions deterministic.
	adminService.DisableBroadcasts()

	h := routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService),
		Users:         handlers.NewUserHandler(userService),
		Offers:        handlers.NewOfferHandler(offerService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Push:          handlers.NewPushHandler(pushService),
		Admin:         handlers.NewAdminHandler(adminService),
	}

	router := chi.NewRouter()
	routes.RegisterRoutes(router, h, tokenManager, repos.Users)

	return &TestServer{
		Server:       httptest.NewServer(router),
		DB:           db,
		Sender:       sender,
		TokenManager: tokenManager,
		Repos:        repos,
	}
}

// Close shuts down the HTTP server
func (s *TestServer) Close() {
	s.Server.Close()
}

// TokenFor mints a valid bearer token for the given email
func (s *TestServer) TokenFor(email string) (string, error) {
	return s.TokenManager.GenerateToken(email)
}
