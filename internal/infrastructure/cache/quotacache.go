package cache

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"mensajio/internal/shared/logger"
)

const (
	remainingKeyPrefix = "billing:quota:remaining:"
	baseRemainingTTL   = 60 * time.Minute
	remainingTTLJitter = 20 * time.Minute // TTL range: 60-80 min (anti-stampede)
)

// RedisQuotaCache mirrors the per-account remaining message counter in Redis.
// The database stays authoritative; entries are best-effort hints for read paths.
type RedisQuotaCache struct {
	client *redis.Client
	logger logger.Interface
}

// NewRedisQuotaCache creates a new Redis-based quota cache
func NewRedisQuotaCache(client *redis.Client, logger logger.Interface) *RedisQuotaCache {
	return &RedisQuotaCache{
		client: client,
		logger: logger,
	}
}

func (c *RedisQuotaCache) key(accountID uint) string {
	return fmt.Sprintf("%s%d", remainingKeyPrefix, accountID)
}

// SetRemaining stores the remaining message count for an account
func (c *RedisQuotaCache) SetRemaining(ctx context.Context, accountID uint, remaining int) error {
	key := c.key(accountID)

	if err := c.client.Set(ctx, key, remaining, remainingTTLWithJitter()).Err(); err != nil {
		return fmt.Errorf("failed to set remaining quota in cache: %w", err)
	}

	c.logger.Debugw("remaining quota cached",
		"account_id", accountID,
		"remaining", remaining,
	)

	return nil
}

// GetRemaining retrieves the cached remaining count.
// Returns (0, false, nil) on cache miss.
func (c *RedisQuotaCache) GetRemaining(ctx context.Context, accountID uint) (int, bool, error) {
	key := c.key(accountID)

	result, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get remaining quota from cache: %w", err)
	}

	remaining, err := strconv.Atoi(result)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse cached remaining quota: %w", err)
	}

	return remaining, true, nil
}

// Invalidate removes the cached counter for an account
func (c *RedisQuotaCache) Invalidate(ctx context.Context, accountID uint) error {
	key := c.key(accountID)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate quota cache: %w", err)
	}

	c.logger.Debugw("remaining quota cache invalidated",
		"account_id", accountID,
	)

	return nil
}

// remainingTTLWithJitter returns a randomized TTL to prevent cache stampede.
// Range: [baseRemainingTTL, baseRemainingTTL + remainingTTLJitter) i.e. 60-80 minutes.
func remainingTTLWithJitter() time.Duration {
	jitter := time.Duration(rand.Int64N(int64(remainingTTLJitter)))
	return baseRemainingTTL + jitter
}
