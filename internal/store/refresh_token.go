package store

import (
	"context"

	"github.com/google/uuid"
)

// RefreshTokenStore persists issued refresh tokens so sessions survive
// restarts and can be revoked by logout. One row per issued token; logout
// deletes the row directly, there is no rotation or revocation list.
type RefreshTokenStore interface {
	// Create persists a freshly issued refresh token for the user.
	Create(ctx context.Context, token string, userID uuid.UUID) error

	// FindUserID resolves a refresh token to the user it was issued for.
	// Returns ErrSessionNotFound if the token is unknown.
	FindUserID(ctx context.Context, token string) (uuid.UUID, error)

	// Delete removes the token record.
	// Returns ErrSessionNotFound if the token is unknown.
	Delete(ctx context.Context, token string) error
}
