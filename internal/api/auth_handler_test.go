package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anketahub/anketa-api/internal/config"
	"github.com/anketahub/anketa-api/internal/domain"
	"github.com/anketahub/anketa-api/internal/service/auth"
	"github.com/anketahub/anketa-api/internal/store"
)

// fakeAuthService implements AuthService with overridable behavior per test.
type fakeAuthService struct {
	signUpFn         func(ctx context.Context, email, username, password string) (string, error)
	signUpApproveFn  func(ctx context.Context, sessionID, code string) (*domain.User, auth.TokenPair, error)
	signInFn         func(ctx context.Context, email, password string) (*domain.User, auth.TokenPair, error)
	refreshFn        func(ctx context.Context, refreshToken string) (auth.TokenPair, error)
	logoutFn         func(ctx context.Context, refreshToken string) error
	recoverFn        func(ctx context.Context, email string) (string, error)
	recoverApproveFn func(ctx context.Context, sessionID, code string) error
	recoverUpdateFn  func(ctx context.Context, sessionID, newPassword string) error
}

var _ AuthService = (*fakeAuthService)(nil)

func (f *fakeAuthService) SignUp(ctx context.Context, email, username, password string) (string, error) {
	return f.signUpFn(ctx, email, username, password)
}

func (f *fakeAuthService) SignUpApprove(
	ctx context.Context,
	sessionID, code string,
) (*domain.User, auth.TokenPair, error) {
	return f.signUpApproveFn(ctx, sessionID, code)
}

func (f *fakeAuthService) SignIn(
	ctx context.Context,
	email, password string,
) (*domain.User, auth.TokenPair, error) {
	return f.signInFn(ctx, email, password)
}

func (f *fakeAuthService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	return f.refreshFn(ctx, refreshToken)
}

func (f *fakeAuthService) Logout(ctx context.Context, refreshToken string) error {
	return f.logoutFn(ctx, refreshToken)
}

func (f *fakeAuthService) RecoverPassword(ctx context.Context, email string) (string, error) {
	return f.recoverFn(ctx, email)
}

func (f *fakeAuthService) RecoverApprove(ctx context.Context, sessionID, code string) error {
	return f.recoverApproveFn(ctx, sessionID, code)
}

func (f *fakeAuthService) RecoverUpdate(ctx context.Context, sessionID, newPassword string) error {
	return f.recoverUpdateFn(ctx, sessionID, newPassword)
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   "test-secret-key-thats-long-enough-for-hmac",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 10080,
		SessionTTLSeconds:           900,
	}
}

// newAuthRouter mounts the handler the way the server does.
func newAuthRouter(svc AuthService) *chi.Mux {
	handler := NewAuthHandler(svc, testAuthConfig(), nil)
	r := chi.NewRouter()
	r.Post("/api/auth/register", handler.Register)
	r.Post("/api/auth/approve/register", handler.ApproveRegister)
	r.Post("/api/auth/login", handler.Login)
	r.Post("/api/auth/refresh", handler.Refresh)
	r.Delete("/api/auth/logout", handler.Logout)
	r.Post("/api/auth/recovery", handler.Recovery)
	r.Post("/api/auth/approve/recovery", handler.ApproveRecovery)
	r.Patch("/api/auth/approve/update", handler.UpdatePassword)
	return r
}

func postJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func findCookie(t *testing.T, rr *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthHandler_Register(t *testing.T) {
	t.Parallel()

	t.Run("opens signup session and returns its ID", func(t *testing.T) {
		t.Parallel()
		sessionID := uuid.NewString()
		svc := &fakeAuthService{
			signUpFn: func(ctx context.Context, email, username, password string) (string, error) {
				assert.Equal(t, "user@example.com", email)
				assert.Equal(t, "validuser1", username)
				return sessionID, nil
			},
		}
		router := newAuthRouter(svc)

		rr := postJSON(t, router, http.MethodPost, "/api/auth/register", RegisterRequest{
			Email:    "user@example.com",
			Username: "validuser1",
			Password: "password123",
		})

		require.Equal(t, http.StatusAccepted, rr.Code)

		var resp SessionResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, sessionID, resp.SessionID)
	})

	t.Run("rejects malformed payload", func(t *testing.T) {
		t.Parallel()
		router := newAuthRouter(&fakeAuthService{})

		rr := postJSON(t, router, http.MethodPost, "/api/auth/register", RegisterRequest{
			Email:    "not-an-email",
			Username: "validuser1",
			Password: "password123",
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("maps taken email to conflict", func(t *testing.T) {
		t.Parallel()
		svc := &fakeAuthService{
			signUpFn: func(ctx context.Context, email, username, password string) (string, error) {
				return "", auth.ErrEmailTaken
			},
		}
		router := newAuthRouter(svc)

		rr := postJSON(t, router, http.MethodPost, "/api/auth/register", RegisterRequest{
			Email:    "user@example.com",
			Username: "validuser1",
			Password: "password123",
		})

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestAuthHandler_ApproveRegister(t *testing.T) {
	t.Parallel()

	t.Run("creates account and sets refresh cookie", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		wantSession := uuid.NewString()
		svc := &fakeAuthService{
			signUpApproveFn: func(ctx context.Context, sessionID, code string) (*domain.User, auth.TokenPair, error) {
				assert.Equal(t, wantSession, sessionID)
				assert.Equal(t, "123456", code)
				return &domain.User{ID: userID, Email: "user@example.com"},
					auth.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"},
					nil
			},
		}
		router := newAuthRouter(svc)

		rr := postJSON(t, router, http.MethodPost, "/api/auth/approve/register", ApproveRegisterRequest{
			SessionID: wantSession,
			Code:      "123456",
		})

		require.Equal(t, http.StatusCreated, rr.Code)

		var resp AuthResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, userID, resp.UserID)
		assert.Equal(t, "access-token", resp.AccessToken)

		cookie := findCookie(t, rr, refreshTokenCookie)
		require.NotNil(t, cookie, "refresh cookie must be set")
		assert.Equal(t, "refresh-token", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, refreshCookiePath, cookie.Path)
		assert.Positive(t, cookie.MaxAge)
	})

	t.Run("maps code mismatch to bad request", func(t *testing.T) {
		t.Parallel()
		svc := &fakeAuthService{
			signUpApproveFn: func(ctx context.Context, sessionID, code string) (*domain.User, auth.TokenPair, error) {
				return nil, auth.TokenPair{}, auth.ErrCodeMismatch
			},
		}
		router := newAuthRouter(svc)

		rr := postJSON(t, router, http.MethodPost, "/api/auth/approve/register", ApproveRegisterRequest{
			SessionID: uuid.NewString(),
			Code:      "654321",
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("maps expired session to bad request", func(t *testing.T) {
		t.Parallel()
		svc := &fakeAuthService{
			signUpApproveFn: func(ctx context.Context, sessionID, code string) (*domain.User, auth.TokenPair, error) {
				return nil, auth.TokenPair{}, auth.ErrSessionExpired
			},
		}
		router := newAuthRouter(svc)

		rr := postJSON(t, router, http.MethodPost, "/api/auth/approve/register", ApproveRegisterRequest{
			SessionID: uuid.NewString(),
			Code:      "123456",
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects a non-uuid session ID", func(t *testing.T) {
		t.Parallel()
		router := newAuthRouter(&fakeAuthService{})

		rr := postJSON(t, router, http.MethodPost, "/api/auth/approve/register", ApproveRegisterRequest{
			SessionID: "user@example.com",
			Code:      "123456",
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	t.Run("establishes session", func(t *testing.T) {
		t.Parallel()
		userID := uuid.New()
		svc := &fakeAuthService{
			signInFn: func(ctx context.Context, email, password string) (*domain.User, auth.TokenPair, error) {
				return &domain.User{ID: userID, Email: email},
					auth.TokenPair{AccessToken: "access-token", RefreshToken: "refresh-token"},
					nil
			},
		}
		router := newAuthRouter(svc)

		rr := postJSON(t, router, http.MethodPost, "/api/auth/login", LoginRequest{
			Email:    "user@example.com",
			Password: "password123",
		})

		require.Equal(t, http.StatusOK, rr.Code)
		cookie := findCookie(t, rr, refreshTokenCookie)
		require.NotNil(t, cookie)
		assert.Equal(t, "refresh-token", cookie.Value)
	})

	t.Run("maps bad credentials to unauthorized", func(t *testing.T) {
		t.Parallel()
		svc := &fakeAuthService{
			signInFn: func(ctx context.Context, email, password string) (*domain.User, auth.TokenPair, error) {
				return nil, auth.TokenPair{}, auth.ErrInvalidCredentials
			},
		}
		router := newAuthRouter(svc)

		rr := postJSON(t, router, http.MethodPost, "/api/auth/login", LoginRequest{
			Email:    "user@example.com",
			Password: "wrongpassword",
		})

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Parallel()

	t.Run("rotates the cookie", func(t *testing.T) {
		t.Parallel()
		svc := &fakeAuthService{
			refreshFn: func(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
				assert.Equal(t, "old-refresh", refreshToken)
				return auth.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}, nil
			},
		}
		router := newAuthRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: refreshTokenCookie, Value: "old-refresh"})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		cookie := findCookie(t, rr, refreshTokenCookie)
		require.NotNil(t, cookie)
		assert.Equal(t, "new-refresh", cookie.Value)

		var resp AuthResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "new-access", resp.AccessToken)
	})

	t.Run("missing cookie is unauthorized", func(t *testing.T) {
		t.Parallel()
		svc := &fakeAuthService{
			refreshFn: func(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
				assert.Empty(t, refreshToken)
				return auth.TokenPair{}, auth.ErrMissingToken
			},
		}
		router := newAuthRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Parallel()

	svc := &fakeAuthService{
		logoutFn: func(ctx context.Context, refreshToken string) error {
			assert.Equal(t, "some-refresh", refreshToken)
			return nil
		},
	}
	router := newAuthRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: refreshTokenCookie, Value: "some-refresh"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	cookie := findCookie(t, rr, refreshTokenCookie)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge, "cookie must be expired")
}

func TestAuthHandler_RecoveryFlow(t *testing.T) {
	t.Parallel()

	t.Run("recovery start returns the session ID", func(t *testing.T) {
		t.Parallel()
		sessionID := uuid.NewString()
		svc := &fakeAuthService{
			recoverFn: func(ctx context.Context, email string) (string, error) {
				return sessionID, nil
			},
		}
		router := newAuthRouter(svc)

		rr := postJSON(t, router, http.MethodPost, "/api/auth/recovery", RecoveryRequest{
			Email: "user@example.com",
		})

		require.Equal(t, http.StatusAccepted, rr.Code)

		var resp SessionResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, sessionID, resp.SessionID)
	})

	t.Run("recovery for unknown email is not found", func(t *testing.T) {
		t.Parallel()
		svc := &fakeAuthService{
			recoverFn: func(ctx context.Context, email string) (string, error) {
				return "", store.ErrUserNotFound
			},
		}
		router := newAuthRouter(svc)

		rr := postJSON(t, router, http.MethodPost, "/api/auth/recovery", RecoveryRequest{
			Email: "ghost@example.com",
		})

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("approve recovery", func(t *testing.T) {
		t.Parallel()
		wantSession := uuid.NewString()
		svc := &fakeAuthService{
			recoverApproveFn: func(ctx context.Context, sessionID, code string) error {
				assert.Equal(t, wantSession, sessionID)
				return nil
			},
		}
		router := newAuthRouter(svc)

		rr := postJSON(t, router, http.MethodPost, "/api/auth/approve/recovery", ApproveRecoveryRequest{
			SessionID: wantSession,
			Code:      "123456",
		})

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("update before approval is forbidden", func(t *testing.T) {
		t.Parallel()
		svc := &fakeAuthService{
			recoverUpdateFn: func(ctx context.Context, sessionID, newPassword string) error {
				return auth.ErrNotApproved
			},
		}
		router := newAuthRouter(svc)

		rr := postJSON(t, router, http.MethodPatch, "/api/auth/approve/update", UpdatePasswordRequest{
			SessionID: uuid.NewString(),
			Password:  "newpassword1",
		})

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("update after approval succeeds", func(t *testing.T) {
		t.Parallel()
		svc := &fakeAuthService{
			recoverUpdateFn: func(ctx context.Context, sessionID, newPassword string) error {
				assert.Equal(t, "newpassword1", newPassword)
				return nil
			},
		}
		router := newAuthRouter(svc)

		rr := postJSON(t, router, http.MethodPatch, "/api/auth/approve/update", UpdatePasswordRequest{
			SessionID: uuid.NewString(),
			Password:  "newpassword1",
		})

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
