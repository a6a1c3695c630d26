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

func TestGenerateCode_Format(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "code must be numeric, got %q", code)
		}
	}
}

func TestVerificationService_IssueCodes_StoresBothTypes(t *testing.T) {
	created := make(map[models.VerificationCodeType]string)

	mockCodeRepo := &MockVerificationCodeRepository{
		CreateFunc: func(ctx context.Context, userID, code string, codeType models.VerificationCodeType, expiresAt time.Time) (*models.VerificationCode, error) {
			created[codeType] = code
			return &models.VerificationCode{ID: "code_123", UserID: userID, Code: code, Type: codeType, ExpiresAt: expiresAt}, nil
		},
	}

	svc := NewVerificationService(mockCodeRepo, &MockUserRepository{}, &MockEmailSender{}, &MockSMSSender{}, slog.Default(), 10*time.Minute)

	user := NewTestUser("user123", "user@example.com", "+15550001111")
	svc.IssueCodes(context.Background(), user)

	assert.Len(t, created, 2)
	assert.NotEmpty(t, created[models.CodeTypeEmail])
	assert.NotEmpty(t, created[models.CodeTypePhone])
}

func TestVerificationService_IssueCodes_DeliveryFailureDoesNotPanic(t *testing.T) {
	mockEmail := &MockEmailSender{
		SendFunc: func(ctx context.Context, to, subject, body string) error {
			return assert.AnError
		},
	}
	mockSMS := &MockSMSSender{
		SendSMSFunc: func(ctx context.Context, to, body string) error {
			return assert.AnError
		},
	}

	svc := NewVerificationService(&MockVerificationCodeRepository{}, &MockUserRepository{}, mockEmail, mockSMS, slog.Default(), 10*time.Minute)

	// Registration must not be interrupted by a dead channel.
	svc.IssueCodes(context.Background(), NewTestUser("user123", "user@example.com", "+15550001111"))
}

func TestVerificationService_Resend_InvalidatesPreviousCodes(t *testing.T) {
	invalidated := false

	mockCodeRepo := &MockVerificationCodeRepository{
		InvalidateByTypeFunc: func(ctx context.Context, userID string, codeType models.VerificationCodeType) error {
			invalidated = true
			assert.Equal(t, models.CodeTypeEmail, codeType)
			return nil
		},
	}

	svc := NewVerificationService(mockCodeRepo, &MockUserRepository{}, &MockEmailSender{}, &MockSMSSender{}, slog.Default(), 10*time.Minute)

	user := NewTestUser("user123", "user@example.com", "+15550001111")
	err := svc.Resend(context.Background(), user, models.CodeTypeEmail)

	assert.NoError(t, err)
	assert.True(t, invalidated)
}

func TestVerificationService_Verify_EmailCode(t *testing.T) {
	mockCodeRepo := &MockVerificationCodeRepository{
		ConsumeFunc: func(ctx context.Context, userID, code string, codeType models.VerificationCodeType) (bool, error) {
			return codeType == models.CodeTypeEmail && code == "123456", nil
		},
	}
	mockUserRepo := &MockUserRepository{
		UpdateFunc: func(ctx context.Context, id string, user *models.User) (*models.User, error) {
			return user, nil
		},
	}

	svc := NewVerificationService(mockCodeRepo, mockUserRepo, &MockEmailSender{}, &MockSMSSender{}, slog.Default(), 10*time.Minute)

	user := NewTestUser("user123", "user@example.com", "+15550001111")
	user.EmailVerified = false
	user.PhoneVerified = false
	user.IsVerified = false

	updated, err := svc.Verify(context.Background(), user, "123456")

	require.NoError(t, err)
	assert.True(t, updated.EmailVerified)
	assert.False(t, updated.PhoneVerified)
	assert.False(t, updated.IsVerified, "one channel is not enough for full verification")
}

func TestVerificationService_Verify_BothChannelsUnlockAccount(t *testing.T) {
	mockCodeRepo := &MockVerificationCodeRepository{
		ConsumeFunc: func(ctx context.Context, userID, code string, codeType models.VerificationCodeType) (bool, error) {
			return codeType == models.CodeTypePhone, nil
		},
	}
	mockUserRepo := &MockUserRepository{
		UpdateFunc: func(ctx context.Context, id string, user *models.User) (*models.User, error) {
			return user, nil
		},
	}

	svc := NewVerificationService(mockCodeRepo, mockUserRepo, &MockEmailSender{}, &MockSMSSender{}, slog.Default(), 10*time.Minute)

	user := NewTestUser("user123", "user@example.com", "+15550001111")
	user.EmailVerified = true
	user.PhoneVerified = false
	user.IsVerified = false

	updated, err := svc.Verify(context.Background(), user, "654321")

	require.NoError(t, err)
	assert.True(t, updated.PhoneVerified)
	assert.True(t, updated.IsVerified)
	assert.True(t, updated.IsActive)
}

func TestVerificationService_Verify_InvalidCode(t *testing.T) {
	mockCodeRepo := &MockVerificationCodeRepository{
		ConsumeFunc: func(ctx context.Context, userID, code string, codeType models.VerificationCodeType) (bool, error) {
			return false, nil
		},
	}

	svc := NewVerificationService(mockCodeRepo, &MockUserRepository{}, &MockEmailSender{}, &MockSMSSender{}, slog.Default(), 10*time.Minute)

	user := NewTestUser("user123", "user@example.com", "+15550001111")
	updated, err := svc.Verify(context.Background(), user, "000000")

	assert.ErrorIs(t, err, models.ErrInvalidCode)
	assert.Nil(t, updated)
}
