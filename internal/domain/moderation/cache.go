package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cached rows stay valid across suspension expiry because the access
// predicates derive from suspension_ends_at, not from the stored flags.
const statusCacheTTL = 5 * time.Minute

// StatusCache fronts the status ledger for the canAccess hot path. A nil
// cache is valid; every read then hits the database.
type StatusCache interface {
	Get(ctx context.Context, userID int64) (*UserModerationStatus, error)
	Set(ctx context.Context, status *UserModerationStatus) error
	Invalidate(ctx context.Context, userID int64) error
}

type redisStatusCache struct {
	client *redis.Client
}

// NewRedisStatusCache creates a redis-backed status cache. A nil client
// yields a nil cache, every read then falls through to the database.
func NewRedisStatusCache(client *redis.Client) StatusCache {
	if client == nil {
		return nil
	}
	return &redisStatusCache{client: client}
}

func statusKey(userID int64) string {
	return fmt.Sprintf("moderation:status:%d", userID)
}

func (c *redisStatusCache) Get(ctx context.Context, userID int64) (*UserModerationStatus, error) {
	raw, err := c.client.Get(ctx, statusKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var status UserModerationStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *redisStatusCache) Set(ctx context.Context, status *UserModerationStatus) error {
	raw, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statusKey(status.UserID), raw, statusCacheTTL).Err()
}

func (c *redisStatusCache) Invalidate(ctx context.Context, userID int64) error {
	return c.client.Del(ctx, statusKey(userID)).Err()
}
