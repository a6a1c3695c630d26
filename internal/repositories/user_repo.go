package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flashoffers/api/internal/database"
	"github.com/flashoffers/api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, email, phone, username, full_name, password_hash,
	is_active, is_verified, email_verified, phone_verified, is_admin,
	oauth_provider, oauth_id,
	notify_email, notify_sms, notify_whatsapp, notify_telegram, notify_push, telegram_chat_id,
	created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{pool: db.Pool}
}

// UserFilter narrows admin user listings.
type UserFilter struct {
	Search     string
	IsAdmin    *bool
	IsVerified *bool
	Limit      int
	Offset     int
}

// scanUserRow handles nullable fields and populates a User model from a database row
func scanUserRow(scanner rowScanner) (*models.User, error) {
	var user models.User
	var phone, username, fullName, passwordHash *string
	var oauthProvider, oauthID, telegramChatID *string

	err := scanner.Scan(
		&user.ID, &user.Email, &phone, &username, &fullName, &passwordHash,
		&user.IsActive, &user.IsVerified, &user.EmailVerified, &user.PhoneVerified, &user.IsAdmin,
		&oauthProvider, &oauthID,
		&user.NotifyEmail, &user.NotifySMS, &user.NotifyWhatsApp, &user.NotifyTelegram, &user.NotifyPush, &telegramChatID,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if phone != nil {
		user.Phone = *phone
	}
	if username != nil {
		user.Username = *username
	}
	if fullName != nil {
		user.FullName = *fullName
	}
	if passwordHash != nil {
		user.PasswordHash = *passwordHash
	}
	if oauthProvider != nil {
		user.OAuthProvider = *oauthProvider
	}
	if oauthID != nil {
		user.OAuthID = *oauthID
	}
	if telegramChatID != nil {
		user.TelegramChatID = *telegramChatID
	}

	return &user, nil
}

// scanUserRows iterates through rows and scans each into User models
func scanUserRows(rows pgx.Rows) ([]*models.User, error) {
	defer rows.Close()

	users := make([]*models.User, 0)

	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

// nullable converts an empty string to a NULL parameter.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUserRow(r.pool.QueryRow(ctx, query, email))
}

// GetByEmailOrPhone finds any account claiming either identifier; used for
// duplicate detection at registration.
func (r *UserRepository) GetByEmailOrPhone(ctx context.Context, email, phone string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR phone = $2 LIMIT 1`
	return scanUserRow(r.pool.QueryRow(ctx, query, email, phone))
}

func (r *UserRepository) GetByOAuth(ctx context.Context, provider, oauthID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE oauth_provider = $1 AND oauth_id = $2`
	return scanUserRow(r.pool.QueryRow(ctx, query, provider, oauthID))
}

// UsernameTaken reports whether another user already holds the username.
func (r *UserRepository) UsernameTaken(ctx context.Context, username, excludeUserID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND id != $2)`

	var taken bool
	if err := r.pool.QueryRow(ctx, query, username, excludeUserID).Scan(&taken); err != nil {
		return false, database.MapPostgresError(err)
	}
	return taken, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = uuid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, email, phone, username, full_name, password_hash,
			is_active, is_verified, email_verified, phone_verified, is_admin,
			oauth_provider, oauth_id,
			notify_email, notify_sms, notify_whatsapp, notify_telegram, notify_push, telegram_chat_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query,
		user.ID, user.Email, nullable(user.Phone), nullable(user.Username), nullable(user.FullName), nullable(user.PasswordHash),
		user.IsActive, user.IsVerified, user.EmailVerified, user.PhoneVerified, user.IsAdmin,
		nullable(user.OAuthProvider), nullable(user.OAuthID),
		user.NotifyEmail, user.NotifySMS, user.NotifyWhatsApp, user.NotifyTelegram, user.NotifyPush, nullable(user.TelegramChatID),
		user.CreatedAt, user.UpdatedAt,
	))
}

func (r *UserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users SET username = $1, full_name = $2,
			is_active = $3, is_verified = $4, email_verified = $5, phone_verified = $6, is_admin = $7,
			notify_email = $8, notify_sms = $9, notify_whatsapp = $10, notify_telegram = $11, notify_push = $12,
			telegram_chat_id = $13, updated_at = $14
		WHERE id = $15
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query,
		nullable(user.Username), nullable(user.FullName),
		user.IsActive, user.IsVerified, user.EmailVerified, user.PhoneVerified, user.IsAdmin,
		user.NotifyEmail, user.NotifySMS, user.NotifyWhatsApp, user.NotifyTelegram, user.NotifyPush,
		nullable(user.TelegramChatID), user.UpdatedAt, id,
	))
}

// LinkOAuth attaches a provider identity to an existing account. OAuth
// columns are immutable through Update, so linking gets its own statement.
func (r *UserRepository) LinkOAuth(ctx context.Context, id, provider, oauthID string) (*models.User, error) {
	query := `
		UPDATE users SET oauth_provider = $1, oauth_id = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + userColumns

	return scanUserRow(r.pool.QueryRow(ctx, query, provider, oauthID, id))
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *UserRepository) List(ctx context.Context, filter UserFilter) ([]*models.User, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + userColumns + ` FROM users WHERE 1=1`)

	args := make([]interface{}, 0, 5)

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		fmt.Fprintf(&sb, ` AND (email ILIKE $%d OR full_name ILIKE $%d OR username ILIKE $%d OR phone ILIKE $%d)`, n, n, n, n)
	}
	if filter.IsAdmin != nil {
		args = append(args, *filter.IsAdmin)
		fmt.Fprintf(&sb, ` AND is_admin = $%d`, len(args))
	}
	if filter.IsVerified != nil {
		args = append(args, *filter.IsVerified)
		fmt.Fprintf(&sb, ` AND is_verified = $%d`, len(args))
	}

	args = append(args, filter.Limit)
	fmt.Fprintf(&sb, ` ORDER BY created_at DESC LIMIT $%d`, len(args))
	args = append(args, filter.Offset)
	fmt.Fprintf(&sb, ` OFFSET $%d`, len(args))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}

	return scanUserRows(rows)
}

// ListPushTargets returns active, push-opted-in users, optionally restricted
// to the given id set. Used for broadcast fan-out.
func (r *UserRepository) ListPushTargets(ctx context.Context, userIDs []string) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE notify_push = TRUE AND is_active = TRUE`

	var rows pgx.Rows
	var err error
	if len(userIDs) > 0 {
		rows, err = r.pool.Query(ctx, query+` AND id = ANY($1)`, userIDs)
	} else {
		rows, err = r.pool.Query(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query push targets: %w", err)
	}

	return scanUserRows(rows)
}

// ListNotifiable returns active users with at least one outbound channel
// enabled, for offer broadcasts.
func (r *UserRepository) ListNotifiable(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE is_active = TRUE
		AND (notify_email OR notify_sms OR notify_whatsapp OR notify_telegram)`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifiable users: %w", err)
	}

	return scanUserRows(rows)
}

// CountUsers returns (total, verified, admin) counts for the admin dashboard.
func (r *UserRepository) CountUsers(ctx context.Context) (total, verified, admins int64, err error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_verified),
			COUNT(*) FILTER (WHERE is_admin)
		FROM users`

	if err = r.pool.QueryRow(ctx, query).Scan(&total, &verified, &admins); err != nil {
		return 0, 0, 0, database.MapPostgresError(err)
	}
	return total, verified, admins, nil
}
