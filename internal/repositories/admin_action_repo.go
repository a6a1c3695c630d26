package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flashoffers/api/internal/database"
	"github.com/flashoffers/api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminActionRepository persists the append-only admin audit log.
type AdminActionRepository struct {
	pool *pgxpool.Pool
}

func NewAdminActionRepository(db *database.DB) *AdminActionRepository {
	return &AdminActionRepository{pool: db.Pool}
}

// ActionFilter narrows audit log listings.
type ActionFilter struct {
	ActionType   string
	ResourceType string
	Limit        int
	Offset       int
}

func scanActionRow(scanner rowScanner) (*models.AdminAction, error) {
	var action models.AdminAction

	err := scanner.Scan(
		&action.ID, &action.AdminUserID, &action.ActionType,
		&action.ResourceType, &action.ResourceID, &action.Details, &action.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &action, nil
}

func (r *AdminActionRepository) Create(ctx context.Context, action *models.AdminAction) (*models.AdminAction, error) {
	action.ID = uuid.New().String()
	action.CreatedAt = time.Now()

	query := `
		INSERT INTO admin_actions (id, admin_user_id, action_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, admin_user_id, action_type, resource_type, resource_id, details, created_at`

	created, err := scanActionRow(r.pool.QueryRow(ctx, query,
		action.ID, action.AdminUserID, action.ActionType,
		action.ResourceType, action.ResourceID, action.Details, action.CreatedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create admin action: %w", err)
	}

	return created, nil
}

func (r *AdminActionRepository) List(ctx context.Context, filter ActionFilter) ([]*models.AdminAction, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, admin_user_id, action_type, resource_type, resource_id, details, created_at
		FROM admin_actions WHERE 1=1`)

	args := make([]interface{}, 0, 4)

	if filter.ActionType != "" {
		args = append(args, filter.ActionType)
		fmt.Fprintf(&sb, ` AND action_type = $%d`, len(args))
	}
	if filter.ResourceType != "" {
		args = append(args, filter.ResourceType)
		fmt.Fprintf(&sb, ` AND resource_type = $%d`, len(args))
	}

	args = append(args, filter.Limit)
	fmt.Fprintf(&sb, ` ORDER BY created_at DESC LIMIT $%d`, len(args))
	args = append(args, filter.Offset)
	fmt.Fprintf(&sb, ` OFFSET $%d`, len(args))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query admin actions: %w", err)
	}
	defer rows.Close()

	actions := make([]*models.AdminAction, 0)
	for rows.Next() {
		action, err := scanActionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admin action: %w", err)
		}
		actions = append(actions, action)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating action rows: %w", err)
	}

	return actions, nil
}
