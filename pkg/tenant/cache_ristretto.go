package tenant

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// RistrettoCache is an in-process Cache. Entries cost 1, so maxCost is the
// approximate number of tenants kept.
type RistrettoCache struct {
	c *ristretto.Cache[string, Tenant]
}

// NewRistrettoCache creates an in-process cache bounded by maxCost entries.
func NewRistrettoCache(maxCost int64) (*RistrettoCache, error) {
	if maxCost <= 0 {
		maxCost = 10000
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, Tenant]{
		NumCounters: maxCost * 10,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &RistrettoCache{c: c}, nil
}

func (r *RistrettoCache) Get(_ context.Context, key string) (*Tenant, bool) {
	t, ok := r.c.Get(key)
	if !ok {
		return nil, false
	}
	return &t, true
}

// Set admits t asynchronously; a subsequent Get may miss until Wait returns.
func (r *RistrettoCache) Set(_ context.Context, key string, t Tenant, ttl time.Duration) error {
	r.c.SetWithTTL(key, t, 1, ttl)
	return nil
}

func (r *RistrettoCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		r.c.Del(k)
	}
	return nil
}

// Wait blocks until buffered writes are applied.
func (r *RistrettoCache) Wait() { r.c.Wait() }

func (r *RistrettoCache) Close() { r.c.Close() }
