package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/anketahub/anketa-api/internal/platform/logger"
	"github.com/anketahub/anketa-api/internal/store"
	"github.com/google/uuid"
)

// PostgresRefreshTokenStore implements the store.RefreshTokenStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRefreshTokenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRefreshTokenStore creates a new PostgreSQL implementation of the
// RefreshTokenStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresRefreshTokenStore(db store.DBTX, logger *slog.Logger) *PostgresRefreshTokenStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRefreshTokenStore{
		db:     db,
		logger: logger.With(slog.String("component", "refresh_token_store")),
	}
}

// Ensure PostgresRefreshTokenStore implements store.RefreshTokenStore interface
var _ store.RefreshTokenStore = (*PostgresRefreshTokenStore)(nil)

// Create implements store.RefreshTokenStore.Create
// Re-issuing an identical token for the same user is an upsert, not an error.
func (s *PostgresRefreshTokenStore) Create(ctx context.Context, token string, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO refresh_tokens (token, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id, created_at = EXCLUDED.created_at
	`
	_, err := s.db.ExecContext(ctx, query, token, userID, time.Now().UTC())
	if err != nil {
		log.Error("failed to store refresh token",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}

	log.Debug("refresh token stored", slog.String("user_id", userID.String()))
	return nil
}

// FindUserID implements store.RefreshTokenStore.FindUserID
// Returns store.ErrSessionNotFound if the token is unknown.
func (s *PostgresRefreshTokenStore) FindUserID(ctx context.Context, token string) (uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var userID uuid.UUID
	query := `SELECT user_id FROM refresh_tokens WHERE token = $1`
	err := s.db.QueryRowContext(ctx, query, token).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, store.ErrSessionNotFound
		}
		log.Error("failed to look up refresh token", slog.String("error", err.Error()))
		return uuid.Nil, err
	}
	return userID, nil
}

// Delete implements store.RefreshTokenStore.Delete
// Returns store.ErrSessionNotFound if the token is unknown.
func (s *PostgresRefreshTokenStore) Delete(ctx context.Context, token string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	if err != nil {
		log.Error("failed to delete refresh token", slog.String("error", err.Error()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected", slog.String("error", err.Error()))
		return err
	}
	if rowsAffected == 0 {
		return store.ErrSessionNotFound
	}

	log.Debug("refresh token deleted")
	return nil
}
