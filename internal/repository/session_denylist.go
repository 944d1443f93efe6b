package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/status-page/internal/persistence"
)

const revokedKeyPrefix = "auth:revoked:"

// revocationStore is the slice of the go-redis client the denylist uses.
type revocationStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// SessionDenylist keeps revoked token ids in Redis until the token would
// have expired anyway.
type SessionDenylist struct {
	client revocationStore
}

// NewSessionDenylist returns a Redis-backed denylist.
func NewSessionDenylist(client *redis.Client) *SessionDenylist {
	if client == nil {
		return &SessionDenylist{}
	}
	return &SessionDenylist{client: client}
}

// Revoke marks tokenID as revoked for ttl. Non-positive ttls are no-ops: the
// token is already expired.
func (d *SessionDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	if d == nil || d.client == nil {
		return persistence.ErrRedisNotConfigured
	}
	return d.client.Set(ctx, revokedKeyPrefix+tokenID, "1", ttl).Err()
}

// IsRevoked reports whether tokenID was revoked.
func (d *SessionDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	if d == nil || d.client == nil {
		return false, persistence.ErrRedisNotConfigured
	}
	err := d.client.Get(ctx, revokedKeyPrefix+tokenID).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}
