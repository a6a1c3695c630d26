package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/flashoffers/api/internal/models"
	"github.com/flashoffers/api/internal/repositories"
)

// OfferAdminRepository defines the offer data access the admin surface needs
type OfferAdminRepository interface {
	GetByID(ctx context.Context, id string) (*models.Offer, error)
	List(ctx context.Context, filter repositories.OfferFilter) ([]*models.Offer, error)
	Create(ctx context.Context, offer *models.Offer) (*models.Offer, error)
	Update(ctx context.Context, id string, offer *models.Offer) (*models.Offer, error)
	Delete(ctx context.Context, id string) error
	CountOffers(ctx context.Context) (total, active int64, err error)
}

// AuditRepository defines the interface for the admin action log
type AuditRepository interface {
	Create(ctx context.Context, action *models.AdminAction) (*models.AdminAction, error)
	List(ctx context.Context, filter repositories.ActionFilter) ([]*models.AdminAction, error)
}

// SwipeCounter exposes aggregate swipe counts for the dashboard
type SwipeCounter interface {
	CountByAction(ctx context.Context) (likes, dislikes int64, err error)
}

// OfferBroadcaster announces new offers over the outbound channels
type OfferBroadcaster interface {
	BroadcastNewOffer(ctx context.Context, offer *models.Offer) (*BroadcastResult, error)
}

// PushBroadcaster announces new offers over Web Push
type PushBroadcaster interface {
	BroadcastOffer(ctx context.Context, offer *models.Offer) (*PushResult, error)
}

// AdminUserUpdate carries the account flags an admin may change.
type AdminUserUpdate struct {
	IsActive   *bool
	IsVerified *bool
	IsAdmin    *bool
}

// AdminStats is the dashboard summary.
type AdminStats struct {
	TotalUsers    int64
	VerifiedUsers int64
	AdminUsers    int64
	TotalOffers   int64
	ActiveOffers  int64
	TotalLikes    int64
	TotalDislikes int64
}

// AdminService implements the management surface: user and offer CRUD, the
// audit trail, and dashboard statistics. Every mutation is recorded in
// admin_actions; a failed audit write is logged but never blocks the
// mutation itself.
type AdminService struct {
	userRepo   UserRepository
	offerRepo  OfferAdminRepository
	auditRepo  AuditRepository
	swipes     SwipeCounter
	notifier   OfferBroadcaster
	push       PushBroadcaster
	logger     *slog.Logger
	broadcasts bool
}

func NewAdminService(
	userRepo UserRepository,
	offerRepo OfferAdminRepository,
	auditRepo AuditRepository,
	swipes SwipeCounter,
	notifier OfferBroadcaster,
	push PushBroadcaster,
	logger *slog.Logger,
) *AdminService {
	return &AdminService{
		userRepo:   userRepo,
		offerRepo:  offerRepo,
		auditRepo:  auditRepo,
		swipes:     swipes,
		notifier:   notifier,
		push:       push,
		logger:     logger,
		broadcasts: true,
	}
}

// DisableBroadcasts turns off the new-offer announcement fan-out; used by
// bulk import tooling.
func (s *AdminService) DisableBroadcasts() {
	s.broadcasts = false
}

func (s *AdminService) ListUsers(ctx context.Context, filter repositories.UserFilter) ([]*models.User, error) {
	return s.userRepo.List(ctx, filter)
}

func (s *AdminService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateUser applies account flag changes and records them in the audit log.
func (s *AdminService) UpdateUser(ctx context.Context, admin *models.User, targetID string, update AdminUserUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	details := models.ActionDetails{}
	if update.IsActive != nil {
		details["is_active"] = *update.IsActive
		user.IsActive = *update.IsActive
	}
	if update.IsVerified != nil {
		details["is_verified"] = *update.IsVerified
		user.IsVerified = *update.IsVerified
	}
	if update.IsAdmin != nil {
		details["is_admin"] = *update.IsAdmin
		user.IsAdmin = *update.IsAdmin
	}

	updated, err := s.userRepo.Update(ctx, targetID, user)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logAction(ctx, admin.ID, models.AdminActionUpdate, models.AdminResourceUser, targetID, details)

	return updated, nil
}

// DeleteUser removes an account. Admin accounts are protected: demote
// first, then delete.
func (s *AdminService) DeleteUser(ctx context.Context, admin *models.User, targetID string) error {
	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if user.IsAdmin {
		return models.ErrAdminProtected
	}

	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		return err
	}

	s.logAction(ctx, admin.ID, models.AdminActionDelete, models.AdminResourceUser, targetID, models.ActionDetails{
		"email": user.Email,
	})

	return nil
}

func (s *AdminService) ListOffers(ctx context.Context, filter repositories.OfferFilter) ([]*models.Offer, error) {
	return s.offerRepo.List(ctx, filter)
}

func (s *AdminService) GetOffer(ctx context.Context, id string) (*models.Offer, error) {
	return s.offerRepo.GetByID(ctx, id)
}

// CreateOffer publishes a new offer and, when it is immediately live,
// announces it to the user base in the background.
func (s *AdminService) CreateOffer(ctx context.Context, admin *models.User, offer *models.Offer) (*models.Offer, error) {
	if err := validateOffer(offer); err != nil {
		return nil, err
	}
	if !offer.ExpiryDate.After(time.Now()) {
		return nil, fmt.Errorf("expiry date must be in the future: %w", models.ErrBadRequest)
	}

	created, err := s.offerRepo.Create(ctx, offer)
	if err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	s.logAction(ctx, admin.ID, models.AdminActionCreate, models.AdminResourceOffer, created.ID, models.ActionDetails{
		"title":    created.Title,
		"category": string(created.Category),
	})

	if s.broadcasts && created.Swipeable(time.Now()) {
		go s.announce(created)
	}

	return created, nil
}

func (s *AdminService) UpdateOffer(ctx context.Context, admin *models.User, id string, offer *models.Offer) (*models.Offer, error) {
	if err := validateOffer(offer); err != nil {
		return nil, err
	}

	// Existence check keeps not-found separate from validation failures
	if _, err := s.offerRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	updated, err := s.offerRepo.Update(ctx, id, offer)
	if err != nil {
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	s.logAction(ctx, admin.ID, models.AdminActionUpdate, models.AdminResourceOffer, id, models.ActionDetails{
		"title":     updated.Title,
		"is_active": updated.IsActive,
	})

	return updated, nil
}

func (s *AdminService) DeleteOffer(ctx context.Context, admin *models.User, id string) error {
	offer, err := s.offerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.offerRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logAction(ctx, admin.ID, models.AdminActionDelete, models.AdminResourceOffer, id, models.ActionDetails{
		"title": offer.Title,
	})

	return nil
}

// ListActions returns the audit trail, newest first.
func (s *AdminService) ListActions(ctx context.Context, filter repositories.ActionFilter) ([]*models.AdminAction, error) {
	return s.auditRepo.List(ctx, filter)
}

// Stats aggregates the dashboard counters.
func (s *AdminService) Stats(ctx context.Context) (*AdminStats, error) {
	totalUsers, verifiedUsers, adminUsers, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	totalOffers, activeOffers, err := s.offerRepo.CountOffers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count offers: %w", err)
	}

	likes, dislikes, err := s.swipes.CountByAction(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count swipes: %w", err)
	}

	return &AdminStats{
		TotalUsers:    totalUsers,
		VerifiedUsers: verifiedUsers,
		AdminUsers:    adminUsers,
		TotalOffers:   totalOffers,
		ActiveOffers:  activeOffers,
		TotalLikes:    likes,
		TotalDislikes: dislikes,
	}, nil
}

// announce runs the broadcast fan-out detached from the admin request.
func (s *AdminService) announce(offer *models.Offer) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if s.notifier != nil {
		if _, err := s.notifier.BroadcastNewOffer(ctx, offer); err != nil {
			s.logger.Error("offer broadcast failed",
				slog.String("offer_id", offer.ID),
				slog.Any("error", err))
		}
	}

	if s.push != nil {
		result, err := s.push.BroadcastOffer(ctx, offer)
		if err != nil {
			s.logger.Error("offer push broadcast failed",
				slog.String("offer_id", offer.ID),
				slog.Any("error", err))
			return
		}
		s.logger.Info("offer push broadcast complete",
			slog.String("offer_id", offer.ID),
			slog.Int("targets", result.Total),
			slog.Int("succeeded", result.Succeeded))
	}
}

// logAction records an audit entry; failures are logged, never propagated.
func (s *AdminService) logAction(ctx context.Context, adminID, actionType, resourceType, resourceID string, details models.ActionDetails) {
	_, err := s.auditRepo.Create(ctx, &models.AdminAction{
		AdminUserID:  adminID,
		ActionType:   actionType,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
	})
	if err != nil {
		s.logger.Error("failed to record admin action",
			slog.String("admin_user_id", adminID),
			slog.String("action", actionType),
			slog.String("resource", resourceType),
			slog.Any("error", err))
	}
}

func validateOffer(offer *models.Offer) error {
	if offer.Title == "" {
		return fmt.Errorf("offer title is required: %w", models.ErrBadRequest)
	}
	if offer.ProviderName == "" {
		return fmt.Errorf("provider name is required: %w", models.ErrBadRequest)
	}
	if !offer.Category.Valid() {
		return fmt.Errorf("invalid offer category: %w", models.ErrBadRequest)
	}
	return nil
}
