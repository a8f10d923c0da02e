// Package rediscache provides a Redis read-through cache in front of the
// Postgres session store.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hackerwear/storefront/models"
	"github.com/hackerwear/storefront/repositories"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultKeyPrefix = "session"

// SessionCache decorates a SessionRepository. Reads are served from Redis
// when possible; writes always go to the wrapped repository first. Cache
// failures are logged and never fail an operation the repository completed.
//
// A miss is filled with SET NX so a copy read before a concurrent revoke can
// never replace the revoked entry that revoke writes.
type SessionCache struct {
	next   repositories.SessionRepository
	client *redis.Client
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// NewSessionCache wraps next with a Redis cache
func NewSessionCache(next repositories.SessionRepository, client *redis.Client, prefix string, logger *zap.Logger) *SessionCache {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &SessionCache{
		next:   next,
		client: client,
		prefix: prefix,
		logger: logger,
		now:    time.Now,
	}
}

// Ping checks Redis connectivity
func (c *SessionCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Create persists the session and primes the cache
func (c *SessionCache) Create(ctx context.Context, session *models.Session) (*models.Session, error) {
	stored, err := c.next.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	c.put(ctx, stored)
	return stored, nil
}

// FindByTokenID returns the cached session or loads it from the repository
func (c *SessionCache) FindByTokenID(ctx context.Context, tokenID uuid.UUID) (*models.Session, error) {
	data, err := c.client.Get(ctx, c.key(tokenID)).Bytes()
	switch {
	case err == nil:
		var session models.Session
		if err := json.Unmarshal(data, &session); err == nil {
			return &session, nil
		}
		c.logger.Warn("discarding undecodable cached session", zap.String("token_id", tokenID.String()))
		if err := c.client.Del(ctx, c.key(tokenID)).Err(); err != nil {
			c.logger.Warn("session cache eviction failed", zap.String("token_id", tokenID.String()), zap.Error(err))
		}
	case errors.Is(err, redis.Nil):
		// miss
	default:
		c.logger.Warn("session cache read failed", zap.String("token_id", tokenID.String()), zap.Error(err))
	}

	session, err := c.next.FindByTokenID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, session)
	return session, nil
}

// Revoke revokes the session and refreshes its cached copy
func (c *SessionCache) Revoke(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	session, err := c.next.Revoke(ctx, id)
	if err != nil {
		return nil, err
	}
	c.put(ctx, session)
	return session, nil
}

// ListActiveByUser is served by the repository
func (c *SessionCache) ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*models.Session, error) {
	return c.next.ListActiveByUser(ctx, userID, now)
}

// RevokeAllForUser revokes all sessions of a user and overwrites the cached
// copy of every row the repository revoked
func (c *SessionCache) RevokeAllForUser(ctx context.Context, userID uuid.UUID) ([]*models.Session, error) {
	revoked, err := c.next.RevokeAllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, session := range revoked {
		c.put(ctx, session)
	}
	return revoked, nil
}

// put overwrites the cached copy
func (c *SessionCache) put(ctx context.Context, session *models.Session) {
	data, ttl, ok := c.encode(ctx, session)
	if !ok {
		return
	}
	if err := c.client.Set(ctx, c.key(session.TokenID), data, ttl).Err(); err != nil {
		c.logger.Warn("session cache write failed", zap.String("token_id", session.TokenID.String()), zap.Error(err))
	}
}

// fill caches a copy loaded on a miss unless an entry appeared meanwhile
func (c *SessionCache) fill(ctx context.Context, session *models.Session) {
	data, ttl, ok := c.encode(ctx, session)
	if !ok {
		return
	}
	if err := c.client.SetNX(ctx, c.key(session.TokenID), data, ttl).Err(); err != nil {
		c.logger.Warn("session cache write failed", zap.String("token_id", session.TokenID.String()), zap.Error(err))
	}
}

// encode returns the cache payload and TTL. Expired sessions are evicted
// instead and ok is false.
func (c *SessionCache) encode(ctx context.Context, session *models.Session) ([]byte, time.Duration, bool) {
	ttl := session.ExpiresAt.Sub(c.now())
	if ttl <= 0 {
		if err := c.client.Del(ctx, c.key(session.TokenID)).Err(); err != nil {
			c.logger.Warn("session cache eviction failed", zap.String("token_id", session.TokenID.String()), zap.Error(err))
		}
		return nil, 0, false
	}

	data, err := json.Marshal(session)
	if err != nil {
		c.logger.Warn("session cache encode failed", zap.Error(err))
		return nil, 0, false
	}
	return data, ttl, true
}

func (c *SessionCache) key(tokenID uuid.UUID) string {
	return c.prefix + ":" + tokenID.String()
}

var _ repositories.SessionRepository = (*SessionCache)(nil)
