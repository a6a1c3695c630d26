package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/flashoffers/api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdminService(userRepo *MockUserRepository, offerRepo *MockOfferAdminRepository, auditRepo *MockAuditRepository) *AdminService {
	if auditRepo == nil {
		auditRepo = &MockAuditRepository{}
	}
	svc := NewAdminService(userRepo, offerRepo, auditRepo, &MockSwipeCounter{}, nil, nil, slog.Default())
	svc.DisableBroadcasts()
	return svc
}

func TestAdminService_DeleteUser_Success(t *testing.T) {
	target := NewTestUser("target", "target@example.com", "+15550002222")

	deleted := false
	mockUserRepo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return target, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}

	var audited *models.AdminAction
	auditRepo := &MockAuditRepository{
		CreateFunc: func(ctx context.Context, action *models.AdminAction) (*models.AdminAction, error) {
			audited = action
			return action, nil
		},
	}

	svc := newTestAdminService(mockUserRepo, &MockOfferAdminRepository{}, auditRepo)

	admin := NewTestUser("admin", "admin@example.com", "+15550001111")
	admin.IsAdmin = true

	err := svc.DeleteUser(context.Background(), admin, "target")

	require.NoError(t, err)
	assert.True(t, deleted)
	require.NotNil(t, audited)
	assert.Equal(t, models.AdminActionDelete, audited.ActionType)
	assert.Equal(t, models.AdminResourceUser, audited.ResourceType)
	assert.Equal(t, "target", audited.ResourceID)
}

func TestAdminService_DeleteUser_AdminProtected(t *testing.T) {
	otherAdmin := NewTestUser("target", "other-admin@example.com", "+15550002222")
	otherAdmin.IsAdmin = true

	mockUserRepo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return otherAdmin, nil
		},
		DeleteFunc: func(ctx context.Context, id string) error {
			t.Fatal("protected account must not be deleted")
			return nil
		},
	}

	audited := false
	auditRepo := &MockAuditRepository{
		CreateFunc: func(ctx context.Context, action *models.AdminAction) (*models.AdminAction, error) {
			audited = true
			return action, nil
		},
	}

	svc := newTestAdminService(mockUserRepo, &MockOfferAdminRepository{}, auditRepo)

	admin := NewTestUser("admin", "admin@example.com", "+15550001111")
	admin.IsAdmin = true

	err := svc.DeleteUser(context.Background(), admin, "target")

	assert.ErrorIs(t, err, models.ErrAdminProtected)
	assert.False(t, audited, "rejected deletions must not reach the audit log")
}

func TestAdminService_UpdateUser_Flags(t *testing.T) {
	target := NewTestUser("target", "target@example.com", "+15550002222")

	mockUserRepo := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return target, nil
		},
		UpdateFunc: func(ctx context.Context, id string, user *models.User) (*models.User, error) {
			return user, nil
		},
	}

	svc := newTestAdminService(mockUserRepo, &MockOfferAdminRepository{}, nil)

	admin := NewTestUser("admin", "admin@example.com", "+15550001111")
	admin.IsAdmin = true

	active := false
	updated, err := svc.UpdateUser(context.Background(), admin, "target", AdminUserUpdate{IsActive: &active})

	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestAdminService_CreateOffer_Success(t *testing.T) {
	svc := newTestAdminService(&MockUserRepository{}, &MockOfferAdminRepository{}, nil)

	admin := NewTestUser("admin", "admin@example.com", "+15550001111")
	admin.IsAdmin = true

	offer := NewTestOffer("", "Flash sale")
	created, err := svc.CreateOffer(context.Background(), admin, offer)

	require.NoError(t, err)
	assert.Equal(t, "offer_123", created.ID)
}

func TestAdminService_CreateOffer_PastExpiry(t *testing.T) {
	svc := newTestAdminService(&MockUserRepository{}, &MockOfferAdminRepository{}, nil)

	admin := NewTestUser("admin", "admin@example.com", "+15550001111")
	offer := NewTestOffer("", "Stale deal")
	offer.ExpiryDate = time.Now().Add(-time.Hour)

	_, err := svc.CreateOffer(context.Background(), admin, offer)

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestAdminService_CreateOffer_InvalidCategory(t *testing.T) {
	svc := newTestAdminService(&MockUserRepository{}, &MockOfferAdminRepository{}, nil)

	admin := NewTestUser("admin", "admin@example.com", "+15550001111")
	offer := NewTestOffer("", "Deal")
	offer.Category = "gadgets"

	_, err := svc.CreateOffer(context.Background(), admin, offer)

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestAdminService_CreateOffer_AuditFailureDoesNotBlock(t *testing.T) {
	auditRepo := &MockAuditRepository{
		CreateFunc: func(ctx context.Context, action *models.AdminAction) (*models.AdminAction, error) {
			return nil, assert.AnError
		},
	}

	svc := newTestAdminService(&MockUserRepository{}, &MockOfferAdminRepository{}, auditRepo)

	admin := NewTestUser("admin", "admin@example.com", "+15550001111")
	created, err := svc.CreateOffer(context.Background(), admin, NewTestOffer("", "Deal"))

	require.NoError(t, err)
	assert.NotNil(t, created)
}

func TestAdminService_Stats(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		CountUsersFunc: func(ctx context.Context) (int64, int64, int64, error) {
			return 100, 60, 2, nil
		},
	}
	mockOfferRepo := &MockOfferAdminRepository{
		CountOffersFunc: func(ctx context.Context) (int64, int64, error) {
			return 40, 25, nil
		},
	}

	svc := NewAdminService(mockUserRepo, mockOfferRepo, &MockAuditRepository{}, &MockSwipeCounter{
		CountByActionFunc: func(ctx context.Context) (int64, int64, error) {
			return 500, 300, nil
		},
	}, nil, nil, slog.Default())

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(100), stats.TotalUsers)
	assert.Equal(t, int64(60), stats.VerifiedUsers)
	assert.Equal(t, int64(2), stats.AdminUsers)
	assert.Equal(t, int64(40), stats.TotalOffers)
	assert.Equal(t, int64(25), stats.ActiveOffers)
	assert.Equal(t, int64(500), stats.TotalLikes)
	assert.Equal(t, int64(300), stats.TotalDislikes)
}
