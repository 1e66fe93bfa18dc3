package external

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medemi-triage-server/internal/domain"
)

const extractionKeyPrefix = "medemi:extraction:"

// CacheClient wraps a Redis client caching decoded extraction results.
// Entries are shared across server replicas.
type CacheClient struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// NewCacheClient creates a new cache client
func NewCacheClient(config domain.CacheConfig) (*CacheClient, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}
	if config.PoolTimeout > 0 {
		opts.PoolTimeout = config.PoolTimeout
	}
	if config.MaxRetries > 0 {
		opts.MaxRetries = config.MaxRetries
	}

	cache := NewCacheClientWithRedis(redis.NewClient(opts), config.DefaultTTL)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := cache.Health(ctx); err != nil {
		cache.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return cache, nil
}

// NewCacheClientWithRedis wraps an existing client.
func NewCacheClientWithRedis(client *redis.Client, defaultTTL time.Duration) *CacheClient {
	return &CacheClient{redis: client, defaultTTL: defaultTTL}
}

// cachedExtraction is the Redis value. Redis expires the key itself; the
// stored schema version drops entries written by an older decoder.
type cachedExtraction struct {
	Schema   int                     `json:"schema"`
	Result   domain.ExtractionResult `json:"result"`
	StoredAt time.Time               `json:"stored_at"`
}

const extractionSchema = 1

// GetExtraction returns the cached result for key. A miss, an unreadable
// value and a stale schema all report found=false.
func (c *CacheClient) GetExtraction(ctx context.Context, key string) (domain.ExtractionResult, bool, error) {
	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return domain.ExtractionResult{}, false, nil
	case err != nil:
		return domain.ExtractionResult{}, false, fmt.Errorf("reading extraction %s: %w", key, err)
	}

	var entry cachedExtraction
	if json.Unmarshal(raw, &entry) != nil || entry.Schema != extractionSchema {
		c.redis.Del(ctx, key)
		return domain.ExtractionResult{}, false, nil
	}
	return entry.Result, true, nil
}

// SetExtraction stores result under key. ttl <= 0 means the client default.
func (c *CacheClient) SetExtraction(ctx context.Context, key string, result domain.ExtractionResult, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	raw, err := json.Marshal(cachedExtraction{Schema: extractionSchema, Result: result, StoredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encoding extraction: %w", err)
	}
	return c.redis.Set(ctx, key, raw, ttl).Err()
}

// Invalidate removes one cached extraction
func (c *CacheClient) Invalidate(ctx context.Context, key string) error {
	return c.redis.Del(ctx, key).Err()
}

// Health checks that Redis answers.
func (c *CacheClient) Health(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *CacheClient) Close() error {
	return c.redis.Close()
}

// ExtractionCacheKey derives a cache key from the model and the rendered
// prompt. Patient text never appears in the key.
func ExtractionCacheKey(model, prompt string) string {
	hash := sha256.Sum256([]byte(model + "\x00" + prompt))
	return extractionKeyPrefix + hex.EncodeToString(hash[:])
}
