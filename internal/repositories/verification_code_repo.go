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

// VerificationCodeRepository handles verification code data access
type VerificationCodeRepository struct {
	pool *pgxpool.Pool
}

func NewVerificationCodeRepository(db *database.DB) *VerificationCodeRepository {
	return &VerificationCodeRepository{pool: db.Pool}
}

func scanCodeRow(scanner rowScanner) (*models.VerificationCode, error) {
	var code models.VerificationCode
	var usedAt *time.Time

	err := scanner.Scan(
		&code.ID, &code.UserID, &code.Code, &code.Type,
		&code.ExpiresAt, &usedAt, &code.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	code.UsedAt = usedAt
	return &code, nil
}

// Create persists a fresh code for the user and channel.
func (r *VerificationCodeRepository) Create(ctx context.Context, userID, code string, codeType models.VerificationCodeType, expiresAt time.Time) (*models.VerificationCode, error) {
	id := uuid.New().String()

	query := `
		INSERT INTO verification_codes (id, user_id, code, type, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, user_id, code, type, expires_at, used_at, created_at`

	vc, err := scanCodeRow(r.pool.QueryRow(ctx, query, id, userID, code, codeType, expiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create verification code: %w", err)
	}

	return vc, nil
}

// Consume atomically marks the most recent matching live code as used and
// reports whether one was found. The subquery pins a single row so duplicate
// codes and concurrent submissions cannot double-spend.
func (r *VerificationCodeRepository) Consume(ctx context.Context, userID, code string, codeType models.VerificationCodeType) (bool, error) {
	query := `
		UPDATE verification_codes SET used_at = NOW()
		WHERE id = (
			SELECT id FROM verification_codes
			WHERE user_id = $1 AND code = $2 AND type = $3
				AND used_at IS NULL AND expires_at > NOW()
			ORDER BY created_at DESC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)`

	result, err := r.pool.Exec(ctx, query, userID, code, codeType)
	if err != nil {
		return false, fmt.Errorf("failed to consume verification code: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// InvalidateByType marks all outstanding codes of one type as used, so a
// resend supersedes its predecessors.
func (r *VerificationCodeRepository) InvalidateByType(ctx context.Context, userID string, codeType models.VerificationCodeType) error {
	query := `
		UPDATE verification_codes SET used_at = NOW()
		WHERE user_id = $1 AND type = $2 AND used_at IS NULL`

	if _, err := r.pool.Exec(ctx, query, userID, codeType); err != nil {
		return fmt.Errorf("failed to invalidate verification codes: %w", err)
	}

	return nil
}

// ListActiveByUser returns live codes for a user, newest first.
func (r *VerificationCodeRepository) ListActiveByUser(ctx context.Context, userID string) ([]*models.VerificationCode, error) {
	query := `
		SELECT id, user_id, code, type, expires_at, used_at, created_at
		FROM verification_codes
		WHERE user_id = $1 AND used_at IS NULL AND expires_at > NOW()
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query verification codes: %w", err)
	}
	defer rows.Close()

	codes := make([]*models.VerificationCode, 0)
	for rows.Next() {
		code, err := scanCodeRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verification code: %w", err)
		}
		codes = append(codes, code)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating code rows: %w", err)
	}

	return codes, nil
}

// CleanupExpired deletes codes that expired more than a day ago.
func (r *VerificationCodeRepository) CleanupExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM verification_codes
		WHERE expires_at < NOW() - INTERVAL '24 hours'`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired codes: %w", err)
	}

	return result.RowsAffected(), nil
}
