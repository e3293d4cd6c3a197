package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
)

// SignupSession holds a pending registration between the register call and
// its confirmation. The password is stored already hashed; no plaintext
// credential ever reaches the cache.
type SignupSession struct {
	Email          string `json:"email"`
	Username       string `json:"username"`
	HashedPassword string `json:"hashed_password"`
	Code           string `json:"code"`
}

// RecoverySession holds a pending password recovery. Approved flips to true
// once the user has confirmed the code; only then may the password be updated.
type RecoverySession struct {
	Email    string `json:"email"`
	Code     string `json:"code"`
	Approved bool   `json:"approved"`
}

// SessionCache stores short-lived signup and recovery sessions keyed by a
// generated session ID. The ID is the caller's only handle on the pending
// flow, so knowing an account's email is not enough to read or replace its
// in-flight session. Entries expire on their own after the configured TTL;
// an expired or never-created entry reads back as ErrSessionExpired.
type SessionCache interface {
	// SetSignup stores a signup session under the session ID, replacing any
	// previous one and restarting its TTL.
	SetSignup(ctx context.Context, sessionID string, session SignupSession) error

	// GetSignup retrieves the signup session by its ID.
	// Returns ErrSessionExpired if there is none.
	GetSignup(ctx context.Context, sessionID string) (SignupSession, error)

	// DeleteSignup drops the signup session. Deleting an absent session is
	// not an error.
	DeleteSignup(ctx context.Context, sessionID string) error

	// SetRecovery stores a recovery session under the session ID, replacing
	// any previous one and restarting its TTL.
	SetRecovery(ctx context.Context, sessionID string, session RecoverySession) error

	// GetRecovery retrieves the recovery session by its ID.
	// Returns ErrSessionExpired if there is none.
	GetRecovery(ctx context.Context, sessionID string) (RecoverySession, error)

	// DeleteRecovery drops the recovery session. Deleting an absent session
	// is not an error.
	DeleteRecovery(ctx context.Context, sessionID string) error
}

// generateCode produces a 6-digit confirmation code with crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate confirmation code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
