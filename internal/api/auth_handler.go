package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/anketahub/anketa-api/internal/api/shared"
	"github.com/anketahub/anketa-api/internal/config"
	"github.com/anketahub/anketa-api/internal/domain"
	"github.com/anketahub/anketa-api/internal/platform/logger"
	"github.com/anketahub/anketa-api/internal/service/auth"
)

// refreshTokenCookie names the HTTP-only cookie that carries the refresh
// token. It is scoped to the auth routes so it never travels with listing
// traffic.
const (
	refreshTokenCookie = "refreshToken"
	refreshCookiePath  = "/api/auth"
)

// AuthService defines the authentication operations the handler depends on.
// SignUp and RecoverPassword return the session ID the client must carry
// through the approve and update calls.
type AuthService interface {
	SignUp(ctx context.Context, email, username, password string) (string, error)
	SignUpApprove(ctx context.Context, sessionID, code string) (*domain.User, auth.TokenPair, error)
	SignIn(ctx context.Context, email, password string) (*domain.User, auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	RecoverPassword(ctx context.Context, email string) (string, error)
	RecoverApprove(ctx context.Context, sessionID, code string) error
	RecoverUpdate(ctx context.Context, sessionID, newPassword string) error
}

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	authService AuthService
	validator   *validator.Validate
	authConfig  config.AuthConfig
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService AuthService,
	authConfig config.AuthConfig,
	log *slog.Logger,
) *AuthHandler {
	if authService == nil {
		panic("authService cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
		authConfig:  authConfig,
		logger:      log.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /api/auth/register. It opens a pending signup
// session; the account is only created once the code is confirmed.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RegisterRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	sessionID, err := h.authService.SignUp(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to register")
		return
	}

	log.Info("signup session opened", slog.String("email", req.Email))
	shared.RespondWithJSON(w, r, http.StatusAccepted, SessionResponse{
		SessionID: sessionID,
		Message:   "Confirmation code sent",
	})
}

// ApproveRegister handles POST /api/auth/approve/register. On a matching
// code it creates the account and establishes a session.
func (h *AuthHandler) ApproveRegister(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ApproveRegisterRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	user, tokens, err := h.authService.SignUpApprove(r.Context(), req.SessionID, req.Code)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete registration")
		return
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	h.respondWithSession(w, r, user.ID, tokens, http.StatusCreated)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	user, tokens, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to login")
		return
	}

	h.respondWithSession(w, r, user.ID, tokens, http.StatusOK)
}

// Refresh handles POST /api/auth/refresh. The current refresh token is read
// from the cookie, rotated, and the replacement is set on the response.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := h.refreshTokenFromCookie(r)

	tokens, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	h.setRefreshCookie(w, tokens.RefreshToken)
	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		AccessToken: tokens.AccessToken,
	})
}

// Logout handles DELETE /api/auth/logout. The refresh token is revoked and
// the cookie cleared; an unknown or already revoked token is a not-found
// error.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.refreshTokenFromCookie(r)

	if err := h.authService.Logout(r.Context(), token); err != nil {
		HandleAPIError(w, r, err, "Failed to logout")
		return
	}

	h.clearRefreshCookie(w)
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Logged out"})
}

// Recovery handles POST /api/auth/recovery. It opens a recovery session for
// an existing account.
func (h *AuthHandler) Recovery(w http.ResponseWriter, r *http.Request) {
	var req RecoveryRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	sessionID, err := h.authService.RecoverPassword(r.Context(), req.Email)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start recovery")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, SessionResponse{
		SessionID: sessionID,
		Message:   "Confirmation code sent",
	})
}

// ApproveRecovery handles POST /api/auth/approve/recovery. A matching code
// marks the session approved so the password can be updated.
func (h *AuthHandler) ApproveRecovery(w http.ResponseWriter, r *http.Request) {
	var req ApproveRecoveryRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	if err := h.authService.RecoverApprove(r.Context(), req.SessionID, req.Code); err != nil {
		HandleAPIError(w, r, err, "Failed to approve recovery")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Recovery approved"})
}

// UpdatePassword handles PATCH /api/auth/approve/update. It requires an
// approved recovery session.
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req UpdatePasswordRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	if err := h.authService.RecoverUpdate(r.Context(), req.SessionID, req.Password); err != nil {
		HandleAPIError(w, r, err, "Failed to update password")
		return
	}

	log.Info("password updated")
	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Password updated"})
}

// respondWithSession sets the refresh cookie and writes the auth response.
func (h *AuthHandler) respondWithSession(
	w http.ResponseWriter,
	r *http.Request,
	userID uuid.UUID,
	tokens auth.TokenPair,
	status int,
) {
	h.setRefreshCookie(w, tokens.RefreshToken)
	shared.RespondWithJSON(w, r, status, AuthResponse{
		UserID:      userID,
		AccessToken: tokens.AccessToken,
	})
}

// refreshTokenFromCookie returns the refresh token cookie value, or empty
// when the cookie is absent; the auth service rejects empty tokens.
func (h *AuthHandler) refreshTokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(refreshTokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	lifetime := time.Duration(h.authConfig.RefreshTokenLifetimeMinutes) * time.Minute
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    token,
		Path:     refreshCookiePath,
		MaxAge:   int(lifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
