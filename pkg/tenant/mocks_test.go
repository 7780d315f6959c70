package tenant_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

var anyCtx = mock.Anything

type mockStore struct {
	mock.Mock
}

func (m *mockStore) FindActive(ctx context.Context, key string) (*tenant.Tenant, error) {
	args := m.Called(ctx, key)
	t, _ := args.Get(0).(*tenant.Tenant)
	return t, args.Error(1)
}

func (m *mockStore) FindByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*tenant.Tenant)
	return t, args.Error(1)
}

// mapCache is a synchronous Cache for tests.
type mapCache struct {
	mu    sync.Mutex
	items map[string]tenant.Tenant
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string]tenant.Tenant)}
}

func (c *mapCache) Get(_ context.Context, key string) (*tenant.Tenant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.items[key]
	if !ok {
		return nil, false
	}
	return &t, true
}

func (c *mapCache) Set(_ context.Context, key string, t tenant.Tenant, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = t
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

func (c *mapCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func acme() *tenant.Tenant {
	return &tenant.Tenant{
		ID:        "t1",
		Name:      "Acme Escola",
		Slug:      "acme",
		Subdomain: "acme-sub",
		Active:    true,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}
