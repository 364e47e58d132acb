package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crestapp/crest/backend/internal/cache"
	"github.com/crestapp/crest/backend/internal/logger"
	"go.uber.org/zap"
)

// Cache is the feed page cache. It is a pure optimization layer: every
// implementation must be safe to drop at any time, and callers must treat
// any returned error as a miss, never as a request failure.
type Cache interface {
	// Get returns (payload, found, error) for a key.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a payload under a key with a TTL.
	Set(ctx context.Context, key string, payload string, ttl time.Duration) error

	// InvalidateUser removes every cached feed page belonging to a user.
	InvalidateUser(ctx context.Context, userID string) error
}

// Key builds the cache key for one feed page. The userID segment is last so
// InvalidateUser can match all of a user's pages with one pattern.
func Key(variant, userID string, page, pageSize int) string {
	return fmt.Sprintf("feed:%s:%d:%d:%s", variant, page, pageSize, userID)
}

// RedisCache backs the feed cache with Redis.
type RedisCache struct {
	client *cache.RedisClient
}

// NewRedisCache wraps a connected Redis client.
func NewRedisCache(client *cache.RedisClient) *RedisCache {
	return &RedisCache{client: client}
}

func (rc *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := rc.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

func (rc *RedisCache) Set(ctx context.Context, key string, payload string, ttl time.Duration) error {
	return rc.client.SetEx(ctx, key, payload, ttl)
}

func (rc *RedisCache) InvalidateUser(ctx context.Context, userID string) error {
	keys, err := rc.client.Keys(ctx, "feed:*:"+userID)
	if err != nil {
		logger.Log.Debug("Failed to find feed cache keys for invalidation",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return rc.client.Del(ctx, keys...)
}
