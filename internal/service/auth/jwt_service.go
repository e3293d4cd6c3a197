package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService signs and verifies the access and refresh tokens that carry a
// user's identity between requests.
type JWTService interface {
	// GenerateToken signs a short-lived access token for the user.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken checks the access token's signature and expiry and
	// returns its claims. Expired, malformed and refresh tokens are all
	// rejected with the package's token errors.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken signs a long-lived refresh token for the user.
	// Refresh tokens can only be exchanged for new pairs, never used as
	// access tokens.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateRefreshToken checks a refresh token the same way
	// ValidateToken does, additionally rejecting access tokens presented
	// as refresh tokens.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the decoded content of a token issued by JWTService.
type Claims struct {
	// UserID identifies the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// TokenType is "access" or "refresh"; validation uses it to keep the
	// two kinds from standing in for each other.
	TokenType string `json:"type,omitempty"`

	// Registered JWT claims.
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
