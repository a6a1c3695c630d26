package repositories

import (
	"context"
	"fmt"

	"github.com/flashoffers/api/internal/database"
	"github.com/flashoffers/api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PushSubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewPushSubscriptionRepository(db *database.DB) *PushSubscriptionRepository {
	return &PushSubscriptionRepository{pool: db.Pool}
}

func scanSubscriptionRow(scanner rowScanner) (*models.PushSubscription, error) {
	var sub models.PushSubscription

	err := scanner.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.IsActive, &sub.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &sub, nil
}

// Upsert refreshes keys and reactivates when the (user, endpoint) pair already
// exists, otherwise creates an active record.
func (r *PushSubscriptionRepository) Upsert(ctx context.Context, userID, endpoint, p256dh, auth string) (*models.PushSubscription, error) {
	id := uuid.New().String()

	query := `
		INSERT INTO push_subscriptions (id, user_id, endpoint, p256dh_key, auth_key, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, NOW())
		ON CONFLICT ON CONSTRAINT push_subscriptions_user_endpoint_key
		DO UPDATE SET p256dh_key = EXCLUDED.p256dh_key, auth_key = EXCLUDED.auth_key, is_active = TRUE
		RETURNING id, user_id, endpoint, p256dh_key, auth_key, is_active, created_at`

	sub, err := scanSubscriptionRow(r.pool.QueryRow(ctx, query, id, userID, endpoint, p256dh, auth))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert push subscription: %w", err)
	}

	return sub, nil
}

// Deactivate marks the matching subscription inactive; the row is kept.
func (r *PushSubscriptionRepository) Deactivate(ctx context.Context, userID, endpoint string) error {
	query := `UPDATE push_subscriptions SET is_active = FALSE WHERE user_id = $1 AND endpoint = $2`

	result, err := r.pool.Exec(ctx, query, userID, endpoint)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// DeactivateByID retires a subscription after the push service reported the
// endpoint gone.
func (r *PushSubscriptionRepository) DeactivateByID(ctx context.Context, id string) error {
	query := `UPDATE push_subscriptions SET is_active = FALSE WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return database.MapPostgresError(err)
	}

	return nil
}

func (r *PushSubscriptionRepository) ListActiveByUser(ctx context.Context, userID string) ([]*models.PushSubscription, error) {
	query := `
		SELECT id, user_id, endpoint, p256dh_key, auth_key, is_active, created_at
		FROM push_subscriptions
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query push subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]*models.PushSubscription, 0)
	for rows.Next() {
		sub, err := scanSubscriptionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan push subscription: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscription rows: %w", err)
	}

	return subs, nil
}

// CleanupInactive deletes subscriptions deactivated more than 30 days ago.
func (r *PushSubscriptionRepository) CleanupInactive(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM push_subscriptions
		WHERE is_active = FALSE AND created_at < NOW() - INTERVAL '30 days'`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup inactive subscriptions: %w", err)
	}

	return result.RowsAffected(), nil
}
