package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "rating-user-service/internal/domain/user"
)

const generationKey = "users:list:gen"

// UserListCache caches pages of the user listing.
// Pages are keyed by a generation counter so a single Invalidate
// retires every cached page at once.
type UserListCache interface {
	// Generation returns the current cache generation.
	Generation(ctx context.Context) (int64, error)

	// Get retrieves a cached page. Returns nil, nil on a cache miss.
	Get(ctx context.Context, gen int64, opts domain.ListOptions) ([]domain.User, error)

	// Set stores a page read while gen was current.
	Set(ctx context.Context, gen int64, opts domain.ListOptions, users []domain.User) error

	// Invalidate moves to a new generation.
	Invalidate(ctx context.Context) error
}

// RedisUserListCache implements UserListCache using Redis as the backing store.
type RedisUserListCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserListCache creates a new Redis-backed user list cache.
func NewRedisUserListCache(client *redis.Client, ttl time.Duration, log *zap.Logger) UserListCache {
	return &RedisUserListCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// PageKey generates the Redis key for one page in one generation.
func PageKey(gen int64, opts domain.ListOptions) string {
	return fmt.Sprintf("users:list:%d:%d:%d", gen, opts.Skip, opts.Limit)
}

// Generation returns the current generation, 0 if none was recorded yet.
func (c *RedisUserListCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		c.log.Error("failed to read cache generation", zap.Error(err))
		return 0, err
	}
	return gen, nil
}

// Get retrieves a page from Redis cache.
func (c *RedisUserListCache) Get(ctx context.Context, gen int64, opts domain.ListOptions) ([]domain.User, error) {
	key := PageKey(gen, opts)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		// Cache miss - not an error
		c.log.Debug("cache miss", zap.String("key", key))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	users := []domain.User{}
	if err := json.Unmarshal(data, &users); err != nil {
		c.log.Error("failed to unmarshal cached users", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.String("key", key), zap.Int("count", len(users)))
	return users, nil
}

// Set stores a page in Redis cache with TTL.
func (c *RedisUserListCache) Set(ctx context.Context, gen int64, opts domain.ListOptions, users []domain.User) error {
	if users == nil {
		users = []domain.User{}
	}

	key := PageKey(gen, opts)

	data, err := json.Marshal(users)
	if err != nil {
		c.log.Error("failed to marshal users for cache", zap.String("key", key), zap.Error(err))
		return err
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.String("key", key), zap.Error(err))
		return err
	}

	c.log.Debug("cached users", zap.String("key", key), zap.Duration("ttl", c.ttl))
	return nil
}

// Invalidate bumps the generation; older pages expire with their TTL.
func (c *RedisUserListCache) Invalidate(ctx context.Context) error {
	gen, err := c.client.Incr(ctx, generationKey).Result()
	if err != nil {
		c.log.Error("failed to invalidate user list cache", zap.Error(err))
		return err
	}

	c.log.Debug("user list cache invalidated", zap.Int64("generation", gen))
	return nil
}
