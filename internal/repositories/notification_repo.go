package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/flashoffers/api/internal/database"
	"github.com/flashoffers/api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{pool: db.Pool}
}

func scanNotificationRow(scanner rowScanner) (*models.Notification, error) {
	var n models.Notification

	err := scanner.Scan(&n.ID, &n.UserID, &n.OfferID, &n.Type, &n.Message, &n.SentAt, &n.IsRead)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &n, nil
}

func scanNotificationRows(rows pgx.Rows) ([]*models.Notification, error) {
	defer rows.Close()

	notifications := make([]*models.Notification, 0)

	for rows.Next() {
		n, err := scanNotificationRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification rows: %w", err)
	}

	return notifications, nil
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	n.ID = uuid.New().String()
	n.SentAt = time.Now()

	query := `
		INSERT INTO notifications (id, user_id, offer_id, notification_type, message, sent_at, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		RETURNING id, user_id, offer_id, notification_type, message, sent_at, is_read`

	return scanNotificationRow(r.pool.QueryRow(ctx, query,
		n.ID, n.UserID, n.OfferID, n.Type, n.Message, n.SentAt,
	))
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]*models.Notification, error) {
	query := `
		SELECT id, user_id, offer_id, notification_type, message, sent_at, is_read
		FROM notifications WHERE user_id = $1`

	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY sent_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}

	return scanNotificationRows(rows)
}

// MarkRead flags one of the user's notifications as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, notificationID, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`

	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return database.MapPostgresError(err)
	}

	return nil
}

func (r *NotificationRepository) Delete(ctx context.Context, userID, notificationID string) error {
	query := `DELETE FROM notifications WHERE id = $1 AND user_id = $2`

	result, err := r.pool.Exec(ctx, query, notificationID, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
