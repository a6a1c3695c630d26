package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/flashoffers/api/internal/database"
	"github.com/flashoffers/api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SwipeRepository struct {
	pool *pgxpool.Pool
}

func NewSwipeRepository(db *database.DB) *SwipeRepository {
	return &SwipeRepository{pool: db.Pool}
}

func scanSwipeRow(scanner rowScanner) (*models.UserLike, error) {
	var like models.UserLike

	err := scanner.Scan(&like.ID, &like.UserID, &like.OfferID, &like.Action, &like.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &like, nil
}

// Create persists a swipe decision. The unique index on (user_id, offer_id)
// turns concurrent duplicates into ErrConflict.
func (r *SwipeRepository) Create(ctx context.Context, like *models.UserLike) (*models.UserLike, error) {
	like.ID = uuid.New().String()
	like.CreatedAt = time.Now()

	query := `
		INSERT INTO user_likes (id, user_id, offer_id, action, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, offer_id, action, created_at`

	return scanSwipeRow(r.pool.QueryRow(ctx, query,
		like.ID, like.UserID, like.OfferID, like.Action, like.CreatedAt,
	))
}

func (r *SwipeRepository) GetByUserAndOffer(ctx context.Context, userID, offerID string) (*models.UserLike, error) {
	query := `
		SELECT id, user_id, offer_id, action, created_at
		FROM user_likes WHERE user_id = $1 AND offer_id = $2`

	return scanSwipeRow(r.pool.QueryRow(ctx, query, userID, offerID))
}

func (r *SwipeRepository) Delete(ctx context.Context, userID, offerID string) error {
	query := `DELETE FROM user_likes WHERE user_id = $1 AND offer_id = $2`

	result, err := r.pool.Exec(ctx, query, userID, offerID)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// CountByAction returns (likes, dislikes) for the admin dashboard.
func (r *SwipeRepository) CountByAction(ctx context.Context) (likes, dislikes int64, err error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE action = 'like'),
			COUNT(*) FILTER (WHERE action = 'dislike')
		FROM user_likes`

	if err = r.pool.QueryRow(ctx, query).Scan(&likes, &dislikes); err != nil {
		return 0, 0, fmt.Errorf("failed to count swipes: %w", err)
	}
	return likes, dislikes, nil
}
