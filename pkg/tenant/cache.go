package tenant

import (
	"context"
	"time"
)

// Cache stores resolved tenants keyed by normalized slug or subdomain.
type Cache interface {
	// Get returns a cached tenant. A miss and a backend failure look the same.
	Get(ctx context.Context, key string) (*Tenant, bool)

	// Set stores t for ttl.
	Set(ctx context.Context, key string, t Tenant, ttl time.Duration) error

	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string) error
}

// Cache backends selectable through CacheConfig.
const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// CacheConfig selects and sizes the resolver cache. Caching is off unless a
// backend is chosen. A cached tenant keeps resolving until its entry
// expires, even after deactivation. Redis entries can be dropped with
// Resolver.Invalidate from any process; memory entries live in one process
// and in practice only expire by TTL.
type CacheConfig struct {
	Backend string        `env:"TENANT_CACHE_BACKEND" envDefault:"none"`
	TTL     time.Duration `env:"TENANT_CACHE_TTL" envDefault:"30s"`
	// MaxCost bounds the in-memory cache by entry count.
	MaxCost int64 `env:"TENANT_CACHE_MAX_COST" envDefault:"10000"`
}

// Enabled reports whether a cache backend is configured.
func (c CacheConfig) Enabled() bool {
	return c.Backend != "" && c.Backend != CacheBackendNone && c.TTL > 0
}

type noopCache struct{}

// NewNoOpCache returns a cache that never stores anything.
func NewNoOpCache() Cache { return noopCache{} }

func (noopCache) Get(context.Context, string) (*Tenant, bool)               { return nil, false }
func (noopCache) Set(context.Context, string, Tenant, time.Duration) error { return nil }
func (noopCache) Delete(context.Context, ...string) error                   { return nil }
