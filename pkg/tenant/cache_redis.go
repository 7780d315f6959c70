package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/tenantguard/pkg/logger"
)

// RedisKeyPrefix namespaces cached tenants in a shared Redis.
const RedisKeyPrefix = "tenantguard:tenant:"

// RedisClient is the subset of redis.UniversalClient used by RedisCache.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCache shares resolved tenants across instances.
type RedisCache struct {
	client RedisClient
	log    *slog.Logger
}

// NewRedisCache stores tenants in Redis so all instances share one cache.
func NewRedisCache(client RedisClient, log *slog.Logger) *RedisCache {
	if client == nil {
		panic("tenant: redis client cannot be nil")
	}
	if log == nil {
		log = logger.Discard()
	}
	return &RedisCache{client: client, log: log.With(logger.Component("tenant_cache"))}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	data, err := c.client.Get(ctx, RedisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WarnContext(ctx, "redis cache read failed", logger.TenantSlug(key), logger.Error(err))
		}
		return nil, false
	}
	var t Tenant
	if err := json.Unmarshal(data, &t); err != nil {
		c.log.WarnContext(ctx, "corrupt cached tenant", logger.TenantSlug(key), logger.Error(err))
		return nil, false
	}
	return &t, true
}

func (c *RedisCache) Set(ctx context.Context, key string, t Tenant, ttl time.Duration) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode tenant: %w", err)
	}
	if err := c.client.Set(ctx, RedisKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = RedisKeyPrefix + k
	}
	if err := c.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
