// Package rediscache implements the auth session cache on Redis. Signup and
// recovery sessions are JSON payloads keyed by session ID under per-flow key
// prefixes with a TTL enforced by Redis itself, so expiry needs no sweeper.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anketahub/anketa-api/internal/service/auth"
	"github.com/redis/go-redis/v9"
)

const (
	signupKeyPrefix   = "signup:"
	recoveryKeyPrefix = "recovery:"
)

// SessionCache is the Redis-backed implementation of auth.SessionCache.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Ensure SessionCache implements auth.SessionCache interface
var _ auth.SessionCache = (*SessionCache)(nil)

// NewSessionCache creates a session cache over the given Redis client.
// If log is nil, a default logger will be used.
func NewSessionCache(client *redis.Client, ttl time.Duration, log *slog.Logger) *SessionCache {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		panic("session ttl must be positive")
	}
	if log == nil {
		log = slog.Default()
	}
	return &SessionCache{
		client: client,
		ttl:    ttl,
		logger: log.With(slog.String("component", "session_cache")),
	}
}

// SetSignup implements auth.SessionCache.SetSignup
func (c *SessionCache) SetSignup(ctx context.Context, sessionID string, session auth.SignupSession) error {
	return c.set(ctx, signupKeyPrefix+sessionID, session)
}

// GetSignup implements auth.SessionCache.GetSignup
func (c *SessionCache) GetSignup(ctx context.Context, sessionID string) (auth.SignupSession, error) {
	var session auth.SignupSession
	err := c.get(ctx, signupKeyPrefix+sessionID, &session)
	return session, err
}

// DeleteSignup implements auth.SessionCache.DeleteSignup
func (c *SessionCache) DeleteSignup(ctx context.Context, sessionID string) error {
	return c.delete(ctx, signupKeyPrefix+sessionID)
}

// SetRecovery implements auth.SessionCache.SetRecovery
func (c *SessionCache) SetRecovery(ctx context.Context, sessionID string, session auth.RecoverySession) error {
	return c.set(ctx, recoveryKeyPrefix+sessionID, session)
}

// GetRecovery implements auth.SessionCache.GetRecovery
func (c *SessionCache) GetRecovery(ctx context.Context, sessionID string) (auth.RecoverySession, error) {
	var session auth.RecoverySession
	err := c.get(ctx, recoveryKeyPrefix+sessionID, &session)
	return session, err
}

// DeleteRecovery implements auth.SessionCache.DeleteRecovery
func (c *SessionCache) DeleteRecovery(ctx context.Context, sessionID string) error {
	return c.delete(ctx, recoveryKeyPrefix+sessionID)
}

func (c *SessionCache) set(ctx context.Context, key string, session interface{}) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Error("failed to store session", "error", err)
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (c *SessionCache) get(ctx context.Context, key string, out interface{}) error {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return auth.ErrSessionExpired
		}
		c.logger.Error("failed to load session", "error", err)
		return fmt.Errorf("failed to load session: %w", err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return nil
}

func (c *SessionCache) delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Error("failed to delete session", "error", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
