package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notify_hub/internal/config"
)

const unreadCountTTL = 10 * time.Minute

// ErrMiss is returned when no cached value exists for the key.
var ErrMiss = errors.New("cache miss")

func unreadCountKey(userID int64) string {
	return fmt.Sprintf("user:%d-unread_count", userID)
}

// UnreadCounts caches per-user unread delivery counts so the badge query
// does not hit MySQL on every poll.
type UnreadCounts interface {
	Get(ctx context.Context, userID int64) (int64, error)
	Set(ctx context.Context, userID int64, count int64) error
	Invalidate(ctx context.Context, userIDs ...int64) error
}

type noopUnreadCounts struct{}

func (noopUnreadCounts) Get(ctx context.Context, userID int64) (int64, error) { return 0, ErrMiss }
func (noopUnreadCounts) Set(ctx context.Context, userID int64, count int64) error {
	return nil
}
func (noopUnreadCounts) Invalidate(ctx context.Context, userIDs ...int64) error { return nil }

type redisUnreadCounts struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewUnreadCounts returns a Redis-backed cache, or a no-op one when no
// Redis address is configured.
func NewUnreadCounts(cfg *config.Config, logger *zap.Logger) UnreadCounts {
	if cfg.RedisAddr == "" {
		return noopUnreadCounts{}
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return &redisUnreadCounts{rdb: rdb, logger: logger}
}

func (c *redisUnreadCounts) Get(ctx context.Context, userID int64) (int64, error) {
	n, err := c.rdb.Get(ctx, unreadCountKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrMiss
		}
		return 0, fmt.Errorf("redis get: %w", err)
	}
	return n, nil
}

func (c *redisUnreadCounts) Set(ctx context.Context, userID int64, count int64) error {
	if err := c.rdb.Set(ctx, unreadCountKey(userID), count, unreadCountTTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *redisUnreadCounts) Invalidate(ctx context.Context, userIDs ...int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, unreadCountKey(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
