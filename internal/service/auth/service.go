package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anketahub/anketa-api/internal/domain"
	"github.com/anketahub/anketa-api/internal/platform/logger"
	"github.com/anketahub/anketa-api/internal/store"
	"github.com/google/uuid"
)

// TokenPair is an access token plus the refresh token that can renew it.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Service implements the signup, login, refresh and password recovery flows.
// Registration and recovery are two-step: the first call parks the request in
// the session cache with a confirmation code, the second call confirms the
// code and applies the change. Nothing is written to the database until the
// code checks out.
type Service struct {
	db       *sql.DB
	users    store.UserStore
	workers  store.WorkerStore
	tokens   store.RefreshTokenStore
	jwt      JWTService
	hasher   PasswordHasher
	verifier PasswordVerifier
	sessions SessionCache
	logger   *slog.Logger
}

// NewService creates the authentication service.
// If log is nil, a default logger will be used.
func NewService(
	db *sql.DB,
	users store.UserStore,
	workers store.WorkerStore,
	tokens store.RefreshTokenStore,
	jwtService JWTService,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	sessions SessionCache,
	log *slog.Logger,
) *Service {
	if users == nil || workers == nil || tokens == nil {
		panic("users, workers and tokens stores cannot be nil")
	}
	if jwtService == nil || hasher == nil || verifier == nil || sessions == nil {
		panic("jwt service, hasher, verifier and sessions cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		db:       db,
		users:    users,
		workers:  workers,
		tokens:   tokens,
		jwt:      jwtService,
		hasher:   hasher,
		verifier: verifier,
		sessions: sessions,
		logger:   log.With(slog.String("component", "auth_service")),
	}
}

// SignUp validates the credentials, checks they are not already taken, and
// parks the registration in the session cache behind a confirmation code.
// It returns the session ID the approve call must carry; the account does
// not exist until SignUpApprove confirms the code.
func (s *Service) SignUp(ctx context.Context, email, username, password string) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := ValidateEmail(email); err != nil {
		return "", err
	}
	if err := ValidateUsername(username); err != nil {
		return "", err
	}
	if err := ValidatePassword(password); err != nil {
		return "", err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return "", ErrEmailTaken
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return "", fmt.Errorf("failed to check email availability: %w", err)
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return "", ErrUsernameTaken
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return "", fmt.Errorf("failed to check username availability: %w", err)
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		log.Error("failed to hash password during signup", "error", err)
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}

	sessionID := uuid.NewString()
	session := SignupSession{
		Email:          email,
		Username:       username,
		HashedPassword: hashed,
		Code:           code,
	}
	if err := s.sessions.SetSignup(ctx, sessionID, session); err != nil {
		log.Error("failed to store signup session", "error", err)
		return "", fmt.Errorf("failed to store signup session: %w", err)
	}

	// Delivery of the code (SMS/email) happens out of process; it is only
	// logged at debug level so production logs never carry it.
	log.Info("signup session created", "username", username)
	log.Debug("signup confirmation code issued", "code", code)
	return sessionID, nil
}

// SignUpApprove confirms the signup code against the session, creates the
// user together with its worker profile in one transaction, and signs the
// user in.
func (s *Service) SignUpApprove(ctx context.Context, sessionID, code string) (*domain.User, TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.sessions.GetSignup(ctx, sessionID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if session.Code != code {
		log.Warn("signup code mismatch")
		return nil, TokenPair{}, ErrCodeMismatch
	}

	user, err := domain.NewUser(session.Email, session.Username, session.HashedPassword)
	if err != nil {
		return nil, TokenPair{}, err
	}

	now := time.Now().UTC()
	worker := &domain.Worker{
		ID:        uuid.New(),
		UserID:    user.ID,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.workers.WithTx(tx).Create(ctx, worker)
	})
	if err != nil {
		if store.IsDuplicateError(err) {
			// The email or username was claimed while the session sat in
			// the cache.
			if errors.Is(err, store.ErrUsernameExists) {
				return nil, TokenPair{}, ErrUsernameTaken
			}
			return nil, TokenPair{}, ErrEmailTaken
		}
		log.Error("failed to create user", "error", err)
		return nil, TokenPair{}, err
	}

	if err := s.sessions.DeleteSignup(ctx, sessionID); err != nil {
		log.Warn("failed to delete signup session", "error", err)
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}

	log.Info("user registered", "user_id", user.ID)
	return user, pair, nil
}

// SignIn checks the credentials and issues a fresh token pair.
// Unknown email and wrong password both come back as ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, email, password string) (*domain.User, TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch during sign in", "user_id", user.ID)
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}

	log.Info("user signed in", "user_id", user.ID)
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The token must
// both verify as a JWT and still exist in the store; the old record is
// dropped so a refresh token works exactly once.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if refreshToken == "" {
		return TokenPair{}, ErrMissingToken
	}

	claims, err := s.jwt.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	userID, err := s.tokens.FindUserID(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			log.Debug("refresh token not on record", "user_id", claims.UserID)
			return TokenPair{}, ErrInvalidRefreshToken
		}
		return TokenPair{}, err
	}
	if userID != claims.UserID {
		log.Warn("refresh token user mismatch",
			"claims_user_id", claims.UserID,
			"stored_user_id", userID)
		return TokenPair{}, ErrInvalidRefreshToken
	}

	if err := s.tokens.Delete(ctx, refreshToken); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		return TokenPair{}, err
	}

	pair, err := s.issueTokens(ctx, userID)
	if err != nil {
		return TokenPair{}, err
	}

	log.Debug("tokens refreshed", "user_id", userID)
	return pair, nil
}

// Logout revokes the refresh token. Revoking a token that was never issued
// or is already revoked is a not-found error.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrMissingToken
	}

	return s.tokens.Delete(ctx, refreshToken)
}

// RecoverPassword starts a password recovery: it verifies the account exists
// and parks a recovery session behind a confirmation code. It returns the
// session ID the approve and update calls must carry.
func (s *Service) RecoverPassword(ctx context.Context, email string) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := ValidateEmail(email); err != nil {
		return "", err
	}
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return "", err
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}

	sessionID := uuid.NewString()
	session := RecoverySession{
		Email:    email,
		Code:     code,
		Approved: false,
	}
	if err := s.sessions.SetRecovery(ctx, sessionID, session); err != nil {
		log.Error("failed to store recovery session", "error", err)
		return "", fmt.Errorf("failed to store recovery session: %w", err)
	}

	log.Info("recovery session created")
	log.Debug("recovery confirmation code issued", "code", code)
	return sessionID, nil
}

// RecoverApprove confirms the recovery code and marks the session approved,
// unlocking RecoverUpdate for the remainder of the session's TTL.
func (s *Service) RecoverApprove(ctx context.Context, sessionID, code string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.sessions.GetRecovery(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Code != code {
		log.Warn("recovery code mismatch")
		return ErrCodeMismatch
	}

	session.Approved = true
	if err := s.sessions.SetRecovery(ctx, sessionID, session); err != nil {
		log.Error("failed to approve recovery session", "error", err)
		return fmt.Errorf("failed to approve recovery session: %w", err)
	}
	return nil
}

// RecoverUpdate replaces the password once the recovery session has been
// approved. If the account vanished between approval and update there is
// nothing left to protect, so the call succeeds and just drops the session.
func (s *Service) RecoverUpdate(ctx context.Context, sessionID, newPassword string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	session, err := s.sessions.GetRecovery(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.Approved {
		return ErrNotApproved
	}

	user, err := s.users.GetByEmail(ctx, session.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Warn("user vanished before recovery update")
			return s.sessions.DeleteRecovery(ctx, sessionID)
		}
		return err
	}

	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		log.Error("failed to hash password during recovery", "error", err)
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return err
	}

	if err := s.sessions.DeleteRecovery(ctx, sessionID); err != nil {
		log.Warn("failed to delete recovery session", "error", err)
	}

	log.Info("password recovered", "user_id", user.ID)
	return nil
}

// issueTokens signs a fresh pair and persists the refresh token.
func (s *Service) issueTokens(ctx context.Context, userID uuid.UUID) (TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	access, err := s.jwt.GenerateToken(ctx, userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.jwt.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.tokens.Create(ctx, refresh, userID); err != nil {
		log.Error("failed to persist refresh token", "error", err, "user_id", userID)
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
