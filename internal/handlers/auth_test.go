package handlers_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flashoffers/api/internal/handlers"
	"github.com/flashoffers/api/internal/models"
	"github.com/flashoffers/api/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestRegister_Success(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		RegisterFunc: func(ctx context.Context, input services.RegisterInput) (*models.User, error) {
			assert.Equal(t, "newuser@example.com", input.Email)
			return handlers.TestUser("user_1", input.Email), nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, "POST", "/auth/register", handlers.RegisterRequest{
		Email:    "newuser@example.com",
		Phone:    "+15551234567",
		Password: "securePassword123",
	})

	w := httptest.NewRecorder()
	handler.Register(w, req)

	var resp handlers.MessageResponse
	handlers.AssertJSONResponse(t, w, 201, &resp)
	assert.Contains(t, resp.Message, "verification codes")
}

func TestRegister_DuplicateEmail_SameResponseAsSuccess(t *testing.T) {
	// A duplicate email must produce a response indistinguishable from a
	// successful registration.
	mockAuth := &handlers.MockAuthService{
		RegisterFunc: func(ctx context.Context, input services.RegisterInput) (*models.User, error) {
			return nil, models.ErrConflict
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, "POST", "/auth/register", handlers.RegisterRequest{
		Email:    "taken@example.com",
		Phone:    "+15551234567",
		Password: "securePassword123",
	})

	w := httptest.NewRecorder()
	handler.Register(w, req)

	var resp handlers.MessageResponse
	handlers.AssertJSONResponse(t, w, 201, &resp)
	assert.Contains(t, resp.Message, "verification codes")
}

func TestRegister_WeakPassword(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		RegisterFunc: func(ctx context.Context, input services.RegisterInput) (*models.User, error) {
			return nil, models.ErrBadRequest
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, "POST", "/auth/register", handlers.RegisterRequest{
		Email:    "newuser@example.com",
		Phone:    "+15551234567",
		Password: "short",
	})

	w := httptest.NewRecorder()
	handler.Register(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}

func TestRegister_NoPassword(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		RegisterFunc: func(ctx context.Context, input services.RegisterInput) (*models.User, error) {
			assert.Empty(t, input.Password)
			return handlers.TestUser("user_1", input.Email), nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, "POST", "/auth/register", handlers.RegisterRequest{
		Email: "passwordless@example.com",
		Phone: "+15551234567",
	})

	w := httptest.NewRecorder()
	handler.Register(w, req)

	var resp handlers.MessageResponse
	handlers.AssertJSONResponse(t, w, 201, &resp)
	assert.Contains(t, resp.Message, "verification codes")
}

func TestRegister_InvalidPhone(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAuthService{})
	req := handlers.NewTestRequest(t, "POST", "/auth/register", handlers.RegisterRequest{
		Email:    "newuser@example.com",
		Phone:    "not-a-phone",
		Password: "securePassword123",
	})

	w := httptest.NewRecorder()
	handler.Register(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}

func TestLogin_Success(t *testing.T) {
	user := handlers.TestUser("user_1", "user@example.com")
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.LoginResult, error) {
			return &services.LoginResult{
				User:      user,
				Token:     "access_token_123",
				ExpiresIn: 30 * time.Minute,
			}, nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Email:    "user@example.com",
		Password: "password123",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	var resp handlers.LoginResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "access_token_123", resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 1800, resp.ExpiresIn)
	assert.Equal(t, "user@example.com", resp.User.Email)
}

func TestLogin_AuthenticationFailed(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.LoginResult, error) {
			return nil, models.ErrUnauthorized
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Email:    "user@example.com",
		Password: "wrongpassword",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, 401, "unauthorized")

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "Authentication failed", resp["message"])
}

func TestLogin_UnverifiedAccount(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*services.LoginResult, error) {
			return nil, models.ErrForbidden
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, "POST", "/auth/login", handlers.LoginRequest{
		Email:    "unverified@example.com",
		Password: "correctPassword1",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, 403, "forbidden")

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "Account not verified", resp["message"])
}

func TestOAuthLogin_Success(t *testing.T) {
	user := handlers.TestUser("user_1", "user@example.com")
	mockAuth := &handlers.MockAuthService{
		OAuthLoginFunc: func(ctx context.Context, provider, token string) (*services.LoginResult, error) {
			assert.Equal(t, "google", provider)
			return &services.LoginResult{User: user, Token: "token_abc", ExpiresIn: 30 * time.Minute}, nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, "POST", "/auth/oauth", handlers.OAuthLoginRequest{
		Provider: "google",
		Token:    "google-id-token",
	})

	w := httptest.NewRecorder()
	handler.OAuthLogin(w, req)

	var resp handlers.LoginResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "token_abc", resp.AccessToken)
}

func TestOAuthLogin_UnknownProvider(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAuthService{})
	req := handlers.NewTestRequest(t, "POST", "/auth/oauth", handlers.OAuthLoginRequest{
		Provider: "facebook",
		Token:    "some-token",
	})

	w := httptest.NewRecorder()
	handler.OAuthLogin(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}

func TestVerify_Success(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		VerifyAccountFunc: func(ctx context.Context, email, code string) (*models.User, error) {
			assert.Equal(t, "user@example.com", email)
			assert.Equal(t, "123456", code)
			verified := handlers.TestUser("user_1", email)
			return verified, nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, "POST", "/auth/verify", handlers.VerifyRequest{
		Email: "user@example.com",
		Code:  "123456",
	})

	w := httptest.NewRecorder()
	handler.Verify(w, req)

	var resp handlers.UserResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.True(t, resp.IsVerified)
}

func TestVerify_InvalidCode(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		VerifyAccountFunc: func(ctx context.Context, email, code string) (*models.User, error) {
			return nil, models.ErrInvalidCode
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, "POST", "/auth/verify", handlers.VerifyRequest{
		Email: "user@example.com",
		Code:  "000000",
	})

	w := httptest.NewRecorder()
	handler.Verify(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}

func TestVerify_MalformedCode(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAuthService{})
	req := handlers.NewTestRequest(t, "POST", "/auth/verify", handlers.VerifyRequest{
		Email: "user@example.com",
		Code:  "12ab",
	})

	w := httptest.NewRecorder()
	handler.Verify(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}

func TestVerify_UnknownEmail(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		VerifyAccountFunc: func(ctx context.Context, email, code string) (*models.User, error) {
			return nil, models.ErrNotFound
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, "POST", "/auth/verify", handlers.VerifyRequest{
		Email: "nobody@example.com",
		Code:  "123456",
	})

	w := httptest.NewRecorder()
	handler.Verify(w, req)

	handlers.AssertErrorResponse(t, w, 404, "not_found")
}

func TestResend_Success(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		ResendFunc: func(ctx context.Context, email string) error {
			assert.Equal(t, "user@example.com", email)
			return nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, "POST", "/auth/resend", handlers.ResendRequest{
		Email: "user@example.com",
	})

	w := httptest.NewRecorder()
	handler.Resend(w, req)

	var resp handlers.MessageResponse
	handlers.AssertJSONResponse(t, w, 200, &resp)
	assert.Equal(t, "Verification codes sent", resp.Message)
}

func TestResend_AlreadyVerified(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		ResendFunc: func(ctx context.Context, email string) error {
			return models.ErrBadRequest
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, "POST", "/auth/resend", handlers.ResendRequest{
		Email: "user@example.com",
	})

	w := httptest.NewRecorder()
	handler.Resend(w, req)

	handlers.AssertErrorResponse(t, w, 400, "bad_request")
}
