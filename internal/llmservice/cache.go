package llmservice

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"career-advisor/internal/config"
)

// ResponseCache stores completions by key.
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisCache is a ResponseCache backed by Redis.
type RedisCache struct {
	rdb *redis.Client
}

var _ ResponseCache = (*RedisCache)(nil)

// NewRedisCache connects to Redis and pings it once.
func NewRedisCache(ctx context.Context, cfg *config.CacheConfig) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return &RedisCache{rdb: rdb}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// CachedCompleter answers repeated prompts from a ResponseCache. Cache failures
// are logged and fall through to the wrapped completer.
type CachedCompleter struct {
	next  Completer
	cache ResponseCache
	ttl   time.Duration
	model string
}

func NewCachedCompleter(next Completer, cache ResponseCache, model string, ttl time.Duration) *CachedCompleter {
	return &CachedCompleter{next: next, cache: cache, ttl: ttl, model: model}
}

func (c *CachedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	key := CacheKey(c.model, prompt)

	val, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Msg("Completion cache read failed")
	} else if ok {
		log.Debug().Str("key", key).Msg("Completion cache hit")
		return val, nil
	}

	out, err := c.next.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	if err := c.cache.Set(ctx, key, out, c.ttl); err != nil {
		log.Warn().Err(err).Msg("Completion cache write failed")
	}
	return out, nil
}

// CacheKey derives the cache key for a prompt sent to model.
func CacheKey(model, prompt string) string {
	return fmt.Sprintf("completion:%x", sha256.Sum256([]byte(model+"\x00"+prompt)))
}
