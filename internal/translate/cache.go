package translate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amishk599/pljobs/internal/model"
)

// ErrNotFound is returned by a Cache miss.
var ErrNotFound = errors.New("key not found in cache")

// Cache stores translated strings.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}

// MemoryCache is a process-local Cache. Entries do not expire.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]string)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (c *MemoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	c.items[key] = value
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Close() error { return nil }

// RedisCache shares translations between runs and hosts.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects lazily; the first command surfaces errors.
func NewRedisCache(addr, password string, db int) *RedisCache {
	return &RedisCache{client: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	v, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ensure CachedTranslator implements model.Translator.
var _ model.Translator = (*CachedTranslator)(nil)

// CachedTranslator consults a Cache before the wrapped Translator. Cache
// errors other than a miss are logged and bypassed.
type CachedTranslator struct {
	inner  model.Translator
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedTranslator(inner model.Translator, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedTranslator {
	return &CachedTranslator{inner: inner, cache: cache, ttl: ttl, logger: logger}
}

func (t *CachedTranslator) Translate(ctx context.Context, text string) (string, error) {
	key := cacheKey(text)
	v, err := t.cache.Get(ctx, key)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrNotFound) {
		t.logger.Warn("translation cache read failed", "error", err)
	}

	out, err := t.inner.Translate(ctx, text)
	if err != nil {
		return "", err
	}
	if err := t.cache.Set(ctx, key, out, t.ttl); err != nil {
		t.logger.Warn("translation cache write failed", "error", err)
	}
	return out, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "pljobs:tr:pl-en:" + hex.EncodeToString(sum[:])
}
