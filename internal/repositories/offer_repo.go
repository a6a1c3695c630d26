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

const offerColumns = `id, title, description, image_url, provider_name, category,
	discount_percentage, discount_amount, original_price, discounted_price,
	referral_link, promo_code, terms_conditions, instructions,
	expiry_date, is_active, created_at, updated_at`

// eligibleFilter keeps feed queries consistent: active, unexpired, and not
// already swiped by the requesting user.
const eligibleFilter = `is_active = TRUE
	AND expiry_date > NOW()
	AND id NOT IN (SELECT offer_id FROM user_likes WHERE user_id = $1)`

type OfferRepository struct {
	pool *pgxpool.Pool
}

func NewOfferRepository(db *database.DB) *OfferRepository {
	return &OfferRepository{pool: db.Pool}
}

// OfferFilter narrows admin offer listings.
type OfferFilter struct {
	Search   string
	Category *models.OfferCategory
	IsActive *bool
	Limit    int
	Offset   int
}

func scanOfferRow(scanner rowScanner) (*models.Offer, error) {
	var offer models.Offer
	var description, imageURL, referralLink, promoCode, terms, instructions *string

	err := scanner.Scan(
		&offer.ID, &offer.Title, &description, &imageURL, &offer.ProviderName, &offer.Category,
		&offer.DiscountPercentage, &offer.DiscountAmount, &offer.OriginalPrice, &offer.DiscountedPrice,
		&referralLink, &promoCode, &terms, &instructions,
		&offer.ExpiryDate, &offer.IsActive, &offer.CreatedAt, &offer.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if description != nil {
		offer.Description = *description
	}
	if imageURL != nil {
		offer.ImageURL = *imageURL
	}
	if referralLink != nil {
		offer.ReferralLink = *referralLink
	}
	if promoCode != nil {
		offer.PromoCode = *promoCode
	}
	if terms != nil {
		offer.TermsConditions = *terms
	}
	if instructions != nil {
		offer.Instructions = *instructions
	}

	return &offer, nil
}

func scanOfferRows(rows pgx.Rows) ([]*models.Offer, error) {
	defer rows.Close()

	offers := make([]*models.Offer, 0)

	for rows.Next() {
		offer, err := scanOfferRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, offer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating offer rows: %w", err)
	}

	return offers, nil
}

func (r *OfferRepository) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`
	return scanOfferRow(r.pool.QueryRow(ctx, query, id))
}

// ListEligible returns the swipe feed for a user, most recent first.
func (r *OfferRepository) ListEligible(ctx context.Context, userID string, category *models.OfferCategory) ([]*models.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE ` + eligibleFilter
	args := []interface{}{userID}

	if category != nil {
		args = append(args, *category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}

	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible offers: %w", err)
	}

	return scanOfferRows(rows)
}

// NextEligible returns the single most recent eligible offer, or ErrNotFound.
func (r *OfferRepository) NextEligible(ctx context.Context, userID string, category *models.OfferCategory) (*models.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE ` + eligibleFilter
	args := []interface{}{userID}

	if category != nil {
		args = append(args, *category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}

	query += ` ORDER BY created_at DESC LIMIT 1`

	return scanOfferRow(r.pool.QueryRow(ctx, query, args...))
}

// ListLiked returns active offers the user liked, newest like first.
func (r *OfferRepository) ListLiked(ctx context.Context, userID string) ([]*models.Offer, error) {
	query := `
		SELECT o.id, o.title, o.description, o.image_url, o.provider_name, o.category,
			o.discount_percentage, o.discount_amount, o.original_price, o.discounted_price,
			o.referral_link, o.promo_code, o.terms_conditions, o.instructions,
			o.expiry_date, o.is_active, o.created_at, o.updated_at
		FROM offers o
		JOIN user_likes ul ON ul.offer_id = o.id
		WHERE ul.user_id = $1 AND ul.action = 'like' AND o.is_active = TRUE
		ORDER BY ul.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query liked offers: %w", err)
	}

	return scanOfferRows(rows)
}

// GetLiked returns one liked offer for the user, or ErrNotFound.
func (r *OfferRepository) GetLiked(ctx context.Context, userID, offerID string) (*models.Offer, error) {
	query := `
		SELECT o.id, o.title, o.description, o.image_url, o.provider_name, o.category,
			o.discount_percentage, o.discount_amount, o.original_price, o.discounted_price,
			o.referral_link, o.promo_code, o.terms_conditions, o.instructions,
			o.expiry_date, o.is_active, o.created_at, o.updated_at
		FROM offers o
		JOIN user_likes ul ON ul.offer_id = o.id
		WHERE ul.user_id = $1 AND ul.action = 'like' AND o.id = $2 AND o.is_active = TRUE`

	return scanOfferRow(r.pool.QueryRow(ctx, query, userID, offerID))
}

func (r *OfferRepository) List(ctx context.Context, filter OfferFilter) ([]*models.Offer, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + offerColumns + ` FROM offers WHERE 1=1`)

	args := make([]interface{}, 0, 5)

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		fmt.Fprintf(&sb, ` AND (title ILIKE $%d OR description ILIKE $%d OR provider_name ILIKE $%d)`, n, n, n)
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		fmt.Fprintf(&sb, ` AND category = $%d`, len(args))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		fmt.Fprintf(&sb, ` AND is_active = $%d`, len(args))
	}

	args = append(args, filter.Limit)
	fmt.Fprintf(&sb, ` ORDER BY created_at DESC LIMIT $%d`, len(args))
	args = append(args, filter.Offset)
	fmt.Fprintf(&sb, ` OFFSET $%d`, len(args))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}

	return scanOfferRows(rows)
}

func (r *OfferRepository) Create(ctx context.Context, offer *models.Offer) (*models.Offer, error) {
	offer.ID = uuid.New().String()

	now := time.Now()
	offer.CreatedAt = now
	offer.UpdatedAt = now

	query := `
		INSERT INTO offers (id, title, description, image_url, provider_name, category,
			discount_percentage, discount_amount, original_price, discounted_price,
			referral_link, promo_code, terms_conditions, instructions,
			expiry_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING ` + offerColumns

	return scanOfferRow(r.pool.QueryRow(ctx, query,
		offer.ID, offer.Title, nullable(offer.Description), nullable(offer.ImageURL), offer.ProviderName, offer.Category,
		offer.DiscountPercentage, offer.DiscountAmount, offer.OriginalPrice, offer.DiscountedPrice,
		nullable(offer.ReferralLink), nullable(offer.PromoCode), nullable(offer.TermsConditions), nullable(offer.Instructions),
		offer.ExpiryDate, offer.IsActive, offer.CreatedAt, offer.UpdatedAt,
	))
}

func (r *OfferRepository) Update(ctx context.Context, id string, offer *models.Offer) (*models.Offer, error) {
	offer.UpdatedAt = time.Now()

	query := `
		UPDATE offers SET title = $1, description = $2, image_url = $3, provider_name = $4, category = $5,
			discount_percentage = $6, discount_amount = $7, original_price = $8, discounted_price = $9,
			referral_link = $10, promo_code = $11, terms_conditions = $12, instructions = $13,
			expiry_date = $14, is_active = $15, updated_at = $16
		WHERE id = $17
		RETURNING ` + offerColumns

	return scanOfferRow(r.pool.QueryRow(ctx, query,
		offer.Title, nullable(offer.Description), nullable(offer.ImageURL), offer.ProviderName, offer.Category,
		offer.DiscountPercentage, offer.DiscountAmount, offer.OriginalPrice, offer.DiscountedPrice,
		nullable(offer.ReferralLink), nullable(offer.PromoCode), nullable(offer.TermsConditions), nullable(offer.Instructions),
		offer.ExpiryDate, offer.IsActive, offer.UpdatedAt, id,
	))
}

func (r *OfferRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM offers WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// CountOffers returns (total, active) counts for the admin dashboard.
func (r *OfferRepository) CountOffers(ctx context.Context) (total, active int64, err error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE is_active AND expiry_date > NOW())
		FROM offers`

	if err = r.pool.QueryRow(ctx, query).Scan(&total, &active); err != nil {
		return 0, 0, database.MapPostgresError(err)
	}
	return total, active, nil
}
