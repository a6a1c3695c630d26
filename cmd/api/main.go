package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/flashoffers/api/internal/auth"
	"github.com/flashoffers/api/internal/background"
	"github.com/flashoffers/api/internal/config"
	"github.com/flashoffers/api/internal/database"
	"github.com/flashoffers/api/internal/handlers"
	custommw "github.com/flashoffers/api/internal/middleware"
	"github.com/flashoffers/api/internal/models"
	"github.com/flashoffers/api/internal/repositories"
	"github.com/flashoffers/api/internal/routes"
	"github.com/flashoffers/api/internal/services"
	pkgauth "github.com/flashoffers/api/pkg/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	offerRepo := repositories.NewOfferRepository(db)
	swipeRepo := repositories.NewSwipeRepository(db)
	codeRepo := repositories.NewVerificationCodeRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	pushRepo := repositories.NewPushSubscriptionRepository(db)
	actionRepo := repositories.NewAdminActionRepository(db)

	// Outbound channels; each is nil when its credentials are absent and
	// the corresponding channel then reports delivery failure.
	emailSender := buildEmailSender(cfg, logger)
	smsSender := buildSMSSender(cfg, logger)
	telegramSender := buildTelegramSender(cfg, logger)

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry)

	// Services
	verificationService := services.NewVerificationService(
		codeRepo, userRepo, emailSender, smsSender, logger, cfg.Verification.CodeTTL)
	oauthService := services.NewOAuthService(cfg.OAuth.GoogleClientID, cfg.OAuth.AppleClientID, logger)
	authService := services.NewAuthService(userRepo, verificationService, oauthService, tokenManager, logger)
	userService := services.NewUserService(userRepo, logger)
	offerService := services.NewOfferService(offerRepo, swipeRepo, logger)
	notificationService := services.NewNotificationService(
		notificationRepo, userRepo, emailSender, smsSender, telegramSender, logger)
	pushService := services.NewPushService(
		pushRepo, userRepo,
		"mailto:"+cfg.Push.ContactEmail, cfg.Push.VAPIDPublicKey, cfg.Push.VAPIDPrivateKey,
		logger)
	adminService := services.NewAdminService(
		userRepo, offerRepo, actionRepo, swipeRepo, notificationService, pushService, logger)

	// Handlers
	h := routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService),
		Users:         handlers.NewUserHandler(userService),
		Offers:        handlers.NewOfferHandler(offerService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Push:          handlers.NewPushHandler(pushService),
		Admin:         handlers.NewAdminHandler(adminService),
	}

	// Bootstrap first admin if configured
	bootCtx, bootCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminUser(bootCtx, userRepo, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	bootCancel()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(custommw.SecurityHeaders(custommw.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(custommw.CORS(custommw.NewCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(custommw.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, h, tokenManager, userRepo)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.HealthCheck(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Background cleanup of expired codes and dead push subscriptions
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	cleanupWorker := background.NewCleanupWorker(
		verificationService, pushService, cfg.Verification.CleanupInterval, logger)
	go cleanupWorker.Run(cleanupCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

func buildEmailSender(cfg *config.Config, logger *slog.Logger) services.EmailSender {
	sender, err := services.NewSESEmailSender(cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
	if err != nil {
		logger.Warn("email channel disabled", slog.Any("error", err))
		return nil
	}
	return sender
}

func buildSMSSender(cfg *config.Config, logger *slog.Logger) services.SMSSender {
	if cfg.SMS.TwilioAccountSID == "" || cfg.SMS.TwilioAuthToken == "" || cfg.SMS.TwilioFromNumber == "" {
		logger.Warn("sms and whatsapp channels disabled: Twilio credentials not set")
		return nil
	}
	return services.NewTwilioSender(cfg.SMS.TwilioAccountSID, cfg.SMS.TwilioAuthToken, cfg.SMS.TwilioFromNumber)
}

func buildTelegramSender(cfg *config.Config, logger *slog.Logger) services.TelegramSender {
	if cfg.Telegram.BotToken == "" {
		logger.Warn("telegram channel disabled: bot token not set")
		return nil
	}
	return services.NewBotSender(cfg.Telegram.BotToken)
}

// ensureAdminUser creates the first admin account when ADMIN_EMAIL and
// ADMIN_PASSWORD are set and no account with that email exists yet.
func ensureAdminUser(ctx context.Context, userRepo *repositories.UserRepository, logger *slog.Logger) error {
	adminEmail := strings.ToLower(os.Getenv("ADMIN_EMAIL"))
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin bootstrap")
		return nil
	}

	_, err := userRepo.GetByEmail(ctx, adminEmail)
	if err == nil {
		logger.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check for existing admin: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Email:         adminEmail,
		PasswordHash:  hashedPassword,
		FullName:      "Admin",
		IsActive:      true,
		IsAdmin:       true,
		IsVerified:    true,
		EmailVerified: true,
		PhoneVerified: true,
	}

	if _, err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("admin user created")
	return nil
}
