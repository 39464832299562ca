package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	apppayroll "github.com/hrmax/backend/internal/application/payroll"
	"github.com/hrmax/backend/internal/domain/payroll"
	"github.com/hrmax/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultCatalogTTL = 10 * time.Minute

// RedisCatalogCache caches tenant concept catalogs in Redis. The cached
// value is the raw concept list; compiled snapshots never leave the
// process.
type RedisCatalogCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	ttl        time.Duration
	logger     *zap.Logger
}

// RedisCatalogCacheOption is a functional option for configuring the cache
type RedisCatalogCacheOption func(*RedisCatalogCache)

// WithCatalogTTL sets the TTL for cached catalogs
func WithCatalogTTL(ttl time.Duration) RedisCatalogCacheOption {
	return func(c *RedisCatalogCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) RedisCatalogCacheOption {
	return func(c *RedisCatalogCache) {
		c.logger = logger
	}
}

// NewRedisCatalogCache creates a Redis-backed catalog cache with its own client
func NewRedisCatalogCache(cfg config.RedisConfig, opts ...RedisCatalogCacheOption) (*RedisCatalogCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisCatalogCache{
		client:     client,
		ownsClient: true,
		ttl:        defaultCatalogTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// NewRedisCatalogCacheWithClient creates a cache with an existing Redis client.
// The caller retains ownership of the client and is responsible for closing it.
func NewRedisCatalogCacheWithClient(client *redis.Client, opts ...RedisCatalogCacheOption) *RedisCatalogCache {
	cache := &RedisCatalogCache{
		client:     client,
		ownsClient: false,
		ttl:        defaultCatalogTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// catalogKey generates the cache key for a tenant's catalog
func (c *RedisCatalogCache) catalogKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("payroll:catalog:%s", tenantID.String())
}

// GetConcepts retrieves a tenant's active catalog from cache. A nil slice
// with a nil error is a miss.
func (c *RedisCatalogCache) GetConcepts(ctx context.Context, tenantID uuid.UUID) ([]payroll.Concept, error) {
	cacheKey := c.catalogKey(tenantID)

	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if err == redis.Nil {
		c.logger.Debug("Cache miss for concept catalog",
			zap.String("tenant_id", tenantID.String()))
		return nil, nil
	}
	if err != nil {
		c.logger.Error("Failed to get concept catalog from cache",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get catalog from cache: %w", err)
	}

	var concepts []payroll.Concept
	if err := json.Unmarshal(data, &concepts); err != nil {
		c.logger.Error("Failed to unmarshal concept catalog",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
		// Delete corrupted cache entry
		_ = c.client.Del(ctx, cacheKey)
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}

	c.logger.Debug("Cache hit for concept catalog",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("concepts", len(concepts)))
	return concepts, nil
}

// SetConcepts stores a tenant's active catalog in cache
func (c *RedisCatalogCache) SetConcepts(ctx context.Context, tenantID uuid.UUID, concepts []payroll.Concept) error {
	if len(concepts) == 0 {
		return nil
	}

	cacheKey := c.catalogKey(tenantID)

	data, err := json.Marshal(concepts)
	if err != nil {
		c.logger.Error("Failed to marshal concept catalog",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey, data, c.ttl).Err(); err != nil {
		c.logger.Error("Failed to set concept catalog in cache",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to set catalog in cache: %w", err)
	}

	c.logger.Debug("Cached concept catalog",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("concepts", len(concepts)),
		zap.Duration("ttl", c.ttl))
	return nil
}

// Invalidate removes a tenant's catalog from cache
func (c *RedisCatalogCache) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	cacheKey := c.catalogKey(tenantID)

	if err := c.client.Del(ctx, cacheKey).Err(); err != nil {
		c.logger.Error("Failed to invalidate concept catalog",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to invalidate catalog: %w", err)
	}

	c.logger.Debug("Invalidated concept catalog",
		zap.String("tenant_id", tenantID.String()))
	return nil
}

// Close releases the Redis client if this cache owns it
func (c *RedisCatalogCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// Ensure RedisCatalogCache implements ConceptCache
var _ apppayroll.ConceptCache = (*RedisCatalogCache)(nil)
