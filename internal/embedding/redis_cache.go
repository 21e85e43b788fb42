package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jonathan/resume-optimizer/internal/types"
)

// DefaultRedisPrefix namespaces embedding keys in a shared Redis
const DefaultRedisPrefix = "emb:"

// RedisCache is a shared second-tier cache that survives process restarts.
// Redis errors are logged and reported as misses; they never fail an Embed.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache connects to redisURL and verifies the connection with a PING
func NewRedisCache(ctx context.Context, redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}

	return NewRedisCacheFromClient(rdb, ttl, logger), nil
}

// NewRedisCacheFromClient wraps an existing client
func NewRedisCacheFromClient(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{rdb: rdb, prefix: DefaultRedisPrefix, ttl: ttl, logger: logger}
}

// Key maps a normalized text to its Redis key
func (c *RedisCache) Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s%x", c.prefix, sum[:16])
}

// Get loads a vector, treating any Redis or decode error as a miss
func (c *RedisCache) Get(ctx context.Context, key string) (types.EmbeddingVector, bool) {
	data, err := c.rdb.Get(ctx, c.Key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("embedding cache: redis get failed", zap.Error(err))
		}
		return nil, false
	}

	var vector types.EmbeddingVector
	if err := json.Unmarshal(data, &vector); err != nil {
		c.logger.Debug("embedding cache: corrupt redis entry", zap.Error(err))
		return nil, false
	}
	return vector, true
}

// Set stores a vector with the configured TTL
func (c *RedisCache) Set(ctx context.Context, key string, vector types.EmbeddingVector) {
	data, err := json.Marshal(vector)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.Key(key), data, c.ttl).Err(); err != nil {
		c.logger.Debug("embedding cache: redis set failed", zap.Error(err))
	}
}

// Clear deletes every key under the cache prefix
func (c *RedisCache) Clear(ctx context.Context) error {
	var keys []string
	iter := c.rdb.Scan(ctx, 0, c.prefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan embedding keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete embedding keys: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
