package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/flashoffers/api/internal/database"
	"github.com/flashoffers/api/internal/models"
	"github.com/flashoffers/api/internal/repositories"
	"github.com/flashoffers/api/pkg/auth"
)

// TestDB manages a PostgreSQL testcontainer and database wiring
type TestDB struct {
	Container  testcontainers.Container
	ConnString string
	Pool       *pgxpool.Pool
	DB         *database.DB
}

// SetupTestDatabase starts a PostgreSQL container and runs all migrations.
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("flashoffers"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := database.NewFromPool(pool, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := db.Migrate(); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container:  container,
		ConnString: connStr,
		Pool:       pool,
		DB:         db,
	}, nil
}

// Teardown stops the container and closes the connection pool
func (db *TestDB) Teardown(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}

// CleanupTables truncates all tables for test isolation
func (db *TestDB) CleanupTables(ctx context.Context) error {
	tables := []string{
		"admin_actions",
		"push_subscriptions",
		"verification_codes",
		"notifications",
		"user_likes",
		"offers",
		"users",
	}

	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return nil
}

// Repositories bundles the full repository set for integration tests
type Repositories struct {
	Users         *repositories.UserRepository
	Offers        *repositories.OfferRepository
	Swipes        *repositories.SwipeRepository
	Codes         *repositories.VerificationCodeRepository
	Notifications *repositories.NotificationRepository
	Push          *repositories.PushSubscriptionRepository
	Actions       *repositories.AdminActionRepository
}

// InitializeRepositories creates all repository instances from the wrapper
func InitializeRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Users:         repositories.NewUserRepository(db),
		Offers:        repositories.NewOfferRepository(db),
		Swipes:        repositories.NewSwipeRepository(db),
		Codes:         repositories.NewVerificationCodeRepository(db),
		Notifications: repositories.NewNotificationRepository(db),
		Push:          repositories.NewPushSubscriptionRepository(db),
		Actions:       repositories.NewAdminActionRepository(db),
	}
}

// SeedUser inserts a verified active user with a hashed password
func SeedUser(ctx context.Context, pool *pgxpool.Pool, email, phone, password string) (*models.User, error) {
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO users (email, phone, password_hash, is_active, is_verified,
			email_verified, phone_verified, notify_email, notify_sms, notify_push,
			created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, TRUE, TRUE, TRUE, TRUE, TRUE, TRUE, NOW(), NOW())
		RETURNING id, email, created_at, updated_at
	`

	user := &models.User{
		Phone:         phone,
		PasswordHash:  hashedPassword,
		IsActive:      true,
		IsVerified:    true,
		EmailVerified: true,
		PhoneVerified: true,
		NotifyEmail:   true,
		NotifySMS:     true,
		NotifyPush:    true,
	}
	err = pool.QueryRow(ctx, query, email, phone, hashedPassword).Scan(
		&user.ID, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

// SeedAdmin inserts an admin account
func SeedAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) (*models.User, error) {
	user, err := SeedUser(ctx, pool, email, "+15550009999", password)
	if err != nil {
		return nil, err
	}

	if _, err := pool.Exec(ctx, "UPDATE users SET is_admin = TRUE WHERE id = $1", user.ID); err != nil {
		return nil, fmt.Errorf("failed to promote admin: %w", err)
	}
	user.IsAdmin = true
	return user, nil
}

// SeedOffer inserts a live offer expiring in 24 hours
func SeedOffer(ctx context.Context, pool *pgxpool.Pool, title string, category models.OfferCategory) (*models.Offer, error) {
	query := `
		INSERT INTO offers (title, provider_name, category, promo_code, expiry_date,
			is_active, created_at, updated_at)
		VALUES ($1, $2, $3, 'TESTCODE', NOW() + INTERVAL '24 hours', TRUE, NOW(), NOW())
		RETURNING id, title, provider_name, category, expiry_date, is_active, created_at, updated_at
	`

	var offer models.Offer
	err := pool.QueryRow(ctx, query, title, "Test Provider", string(category)).Scan(
		&offer.ID, &offer.Title, &offer.ProviderName, &offer.Category,
		&offer.ExpiryDate, &offer.IsActive, &offer.CreatedAt, &offer.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert offer: %w", err)
	}
	offer.PromoCode = "TESTCODE"

	return &offer, nil
}

// SeedExpiredOffer inserts an offer that expired an hour ago
func SeedExpiredOffer(ctx context.Context, pool *pgxpool.Pool, title string) (*models.Offer, error) {
	query := `
		INSERT INTO offers (title, provider_name, category, expiry_date, is_active,
			created_at, updated_at)
		VALUES ($1, 'Test Provider', 'other', NOW() - INTERVAL '1 hour', TRUE, NOW(), NOW())
		RETURNING id, title, expiry_date
	`

	var offer models.Offer
	err := pool.QueryRow(ctx, query, title).Scan(&offer.ID, &offer.Title, &offer.ExpiryDate)
	if err != nil {
		return nil, fmt.Errorf("failed to insert expired offer: %w", err)
	}
	offer.IsActive = true

	return &offer, nil
}

// SeedVerificationCode inserts an unspent code for the user
func SeedVerificationCode(ctx context.Context, pool *pgxpool.Pool, userID, code string, codeType models.VerificationCodeType) error {
	query := `
		INSERT INTO verification_codes (user_id, code, type, expires_at, created_at)
		VALUES ($1, $2, $3, NOW() + INTERVAL '10 minutes', NOW())
	`

	if _, err := pool.Exec(ctx, query, userID, code, string(codeType)); err != nil {
		return fmt.Errorf("failed to insert verification code: %w", err)
	}
	return nil
}
