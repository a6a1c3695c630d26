package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/flashoffers/api/internal/models"
	"github.com/flashoffers/api/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(userRepo *MockUserRepository, verifier *MockVerifier, oauth *MockOAuthVerifier) *AuthService {
	if verifier == nil {
		verifier = &MockVerifier{}
	}
	if oauth == nil {
		oauth = &MockOAuthVerifier{}
	}
	return NewAuthService(userRepo, verifier, oauth, &MockTokenIssuer{}, slog.Default())
}

func TestAuthService_Register_Success(t *testing.T) {
	codesIssued := false

	mockUserRepo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			user.ID = "user_123"
			return user, nil
		},
	}
	verifier := &MockVerifier{
		IssueCodesFunc: func(ctx context.Context, user *models.User) {
			codesIssued = true
		},
	}

	svc := newTestAuthService(mockUserRepo, verifier, nil)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "New.User@Example.com",
		Phone:    "+15550001111",
		Password: "sturdy-pass1",
		FullName: "New User",
	})

	require.NoError(t, err)
	assert.Equal(t, "new.user@example.com", user.Email, "email must be normalized")
	assert.False(t, user.IsVerified)
	assert.False(t, user.IsActive, "account stays inactive until both channels verify")
	assert.NotEqual(t, "sturdy-pass1", user.PasswordHash)
	assert.True(t, user.NotifyEmail)
	assert.False(t, user.NotifySMS, "SMS notifications are opt-in")
	assert.True(t, codesIssued)
}

func TestAuthService_Register_NoPassword(t *testing.T) {
	codesIssued := false

	mockUserRepo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			user.ID = "user_123"
			return user, nil
		},
	}
	verifier := &MockVerifier{
		IssueCodesFunc: func(ctx context.Context, user *models.User) {
			codesIssued = true
		},
	}

	svc := newTestAuthService(mockUserRepo, verifier, nil)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email: "passwordless@example.com",
		Phone: "+15550002222",
	})

	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash, "no password means no stored hash")
	assert.True(t, codesIssued)
}

func TestAuthService_Register_DuplicateIdentifier(t *testing.T) {
	mockUserRepo := &MockUserRepository{
		GetByEmailOrPhoneFunc: func(ctx context.Context, email, phone string) (*models.User, error) {
			return NewTestUser("existing", email, phone), nil
		},
	}

	svc := newTestAuthService(mockUserRepo, nil, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "taken@example.com",
		Phone:    "+15550001111",
		Password: "sturdy-pass1",
	})

	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	svc := newTestAuthService(&MockUserRepository{}, nil, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "user@example.com",
		Phone:    "+15550001111",
		Password: "short",
	})

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestAuthService_Login_Success(t *testing.T) {
	hash, err := auth.HashPassword("sturdy-pass1")
	require.NoError(t, err)

	user := NewTestUser("user123", "user@example.com", "+15550001111")
	user.PasswordHash = hash

	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}

	svc := newTestAuthService(mockUserRepo, nil, nil)

	result, err := svc.Login(context.Background(), "USER@example.com", "sturdy-pass1")

	require.NoError(t, err)
	assert.Equal(t, "test-token", result.Token)
	assert.Equal(t, "user123", result.User.ID)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	hash, err := auth.HashPassword("sturdy-pass1")
	require.NoError(t, err)

	user := NewTestUser("user123", "user@example.com", "+15550001111")
	user.PasswordHash = hash

	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}

	svc := newTestAuthService(mockUserRepo, nil, nil)

	_, err = svc.Login(context.Background(), "user@example.com", "wrong")

	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthService_Login_Unverified(t *testing.T) {
	hash, err := auth.HashPassword("sturdy-pass1")
	require.NoError(t, err)

	user := NewTestUser("user123", "user@example.com", "+15550001111")
	user.PasswordHash = hash
	user.IsVerified = false
	user.IsActive = false

	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}

	svc := newTestAuthService(mockUserRepo, nil, nil)

	_, err = svc.Login(context.Background(), "user@example.com", "sturdy-pass1")

	assert.ErrorIs(t, err, models.ErrForbidden, "correct password on an unverified account is a verification problem, not a credential one")
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc := newTestAuthService(&MockUserRepository{}, nil, nil)

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever1")

	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthService_Login_OAuthOnlyAccount(t *testing.T) {
	user := NewTestUser("user123", "user@example.com", "")
	user.PasswordHash = ""
	user.OAuthProvider = ProviderGoogle

	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}

	svc := newTestAuthService(mockUserRepo, nil, nil)

	_, err := svc.Login(context.Background(), "user@example.com", "anything1")

	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthService_OAuthLogin_ProvisionsNewAccount(t *testing.T) {
	oauth := &MockOAuthVerifier{
		VerifyFunc: func(ctx context.Context, provider, token string) (*OAuthIdentity, error) {
			return &OAuthIdentity{
				Provider:      ProviderGoogle,
				Subject:       "google-sub-1",
				Email:         "fresh@example.com",
				EmailVerified: true,
				FullName:      "Fresh User",
			}, nil
		},
	}

	var created *models.User
	mockUserRepo := &MockUserRepository{
		CreateFunc: func(ctx context.Context, user *models.User) (*models.User, error) {
			user.ID = "user_123"
			created = user
			return user, nil
		},
	}

	svc := newTestAuthService(mockUserRepo, nil, oauth)

	result, err := svc.OAuthLogin(context.Background(), ProviderGoogle, "id-token")

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "google-sub-1", created.OAuthID)
	assert.True(t, created.EmailVerified)
	assert.False(t, created.PhoneVerified)
	assert.Equal(t, "test-token", result.Token)
}

func TestAuthService_OAuthLogin_LinksExistingEmail(t *testing.T) {
	existing := NewTestUser("user123", "user@example.com", "+15550001111")

	linked := false
	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return existing, nil
		},
		LinkOAuthFunc: func(ctx context.Context, id, provider, oauthID string) (*models.User, error) {
			linked = true
			existing.OAuthProvider = provider
			existing.OAuthID = oauthID
			return existing, nil
		},
	}
	oauth := &MockOAuthVerifier{
		VerifyFunc: func(ctx context.Context, provider, token string) (*OAuthIdentity, error) {
			return &OAuthIdentity{Provider: ProviderGoogle, Subject: "google-sub-1", Email: "user@example.com", EmailVerified: true}, nil
		},
	}

	svc := newTestAuthService(mockUserRepo, nil, oauth)

	result, err := svc.OAuthLogin(context.Background(), ProviderGoogle, "id-token")

	require.NoError(t, err)
	assert.True(t, linked)
	assert.Equal(t, "user123", result.User.ID)
}

func TestAuthService_OAuthLogin_RejectedToken(t *testing.T) {
	oauth := &MockOAuthVerifier{
		VerifyFunc: func(ctx context.Context, provider, token string) (*OAuthIdentity, error) {
			return nil, assert.AnError
		},
	}

	svc := newTestAuthService(&MockUserRepository{}, nil, oauth)

	_, err := svc.OAuthLogin(context.Background(), ProviderGoogle, "bad-token")

	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthService_Resend_AlreadyVerified(t *testing.T) {
	user := NewTestUser("user123", "user@example.com", "+15550001111")
	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}

	svc := newTestAuthService(mockUserRepo, nil, nil)

	err := svc.Resend(context.Background(), "user@example.com")

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestAuthService_Resend_UnknownEmail(t *testing.T) {
	svc := newTestAuthService(&MockUserRepository{}, nil, nil)

	err := svc.Resend(context.Background(), "nobody@example.com")

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAuthService_Resend_ReissuesBothUnverifiedChannels(t *testing.T) {
	user := NewTestUser("user123", "user@example.com", "+15550001111")
	user.IsVerified = false
	user.EmailVerified = false
	user.PhoneVerified = false

	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}

	var resent []models.VerificationCodeType
	verifier := &MockVerifier{
		ResendFunc: func(ctx context.Context, user *models.User, codeType models.VerificationCodeType) error {
			resent = append(resent, codeType)
			return nil
		},
	}

	svc := newTestAuthService(mockUserRepo, verifier, nil)

	err := svc.Resend(context.Background(), "user@example.com")

	require.NoError(t, err)
	assert.Equal(t, []models.VerificationCodeType{models.CodeTypeEmail, models.CodeTypePhone}, resent)
}

func TestAuthService_Resend_SkipsVerifiedChannel(t *testing.T) {
	user := NewTestUser("user123", "user@example.com", "+15550001111")
	user.IsVerified = false
	user.EmailVerified = true
	user.PhoneVerified = false

	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}

	var resent []models.VerificationCodeType
	verifier := &MockVerifier{
		ResendFunc: func(ctx context.Context, user *models.User, codeType models.VerificationCodeType) error {
			resent = append(resent, codeType)
			return nil
		},
	}

	svc := newTestAuthService(mockUserRepo, verifier, nil)

	err := svc.Resend(context.Background(), "user@example.com")

	require.NoError(t, err)
	assert.Equal(t, []models.VerificationCodeType{models.CodeTypePhone}, resent)
}

func TestAuthService_VerifyAccount_LooksUpByEmail(t *testing.T) {
	user := NewTestUser("user123", "user@example.com", "+15550001111")
	user.IsVerified = false
	user.PhoneVerified = false

	mockUserRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			assert.Equal(t, "user@example.com", email, "lookup email must be normalized")
			return user, nil
		},
	}
	verifier := &MockVerifier{
		VerifyFunc: func(ctx context.Context, u *models.User, code string) (*models.User, error) {
			assert.Equal(t, "user123", u.ID)
			assert.Equal(t, "654321", code)
			verified := *u
			verified.PhoneVerified = true
			verified.IsVerified = true
			return &verified, nil
		},
	}

	svc := newTestAuthService(mockUserRepo, verifier, nil)

	updated, err := svc.VerifyAccount(context.Background(), " User@Example.COM ", "654321")

	require.NoError(t, err)
	assert.True(t, updated.IsVerified)
}

func TestAuthService_VerifyAccount_UnknownEmail(t *testing.T) {
	svc := newTestAuthService(&MockUserRepository{}, nil, nil)

	_, err := svc.VerifyAccount(context.Background(), "nobody@example.com", "123456")

	assert.ErrorIs(t, err, models.ErrNotFound)
}
