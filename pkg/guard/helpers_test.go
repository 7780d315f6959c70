package guard_test

import (
	"context"
	"net/http"
	"slices"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/tenantguard/pkg/auth"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

// memStore is an in-memory tenant.Store.
type memStore struct {
	mu      sync.Mutex
	tenants []tenant.Tenant
	err     error
}

func newMemStore(ts ...tenant.Tenant) *memStore {
	return &memStore{tenants: ts}
}

func (s *memStore) FindActive(_ context.Context, key string) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, t := range s.tenants {
		if t.Active && (t.Slug == key || (t.Subdomain != "" && t.Subdomain == key)) {
			return &t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (s *memStore) FindByID(_ context.Context, id string) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tenants {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

// fixedAuth authenticates every request as user, honoring the allow-list.
type fixedAuth struct {
	user *auth.User
	err  error
}

func (a fixedAuth) Authenticate(_ *http.Request, allowed ...auth.Role) (*auth.User, error) {
	if a.err != nil {
		return nil, a.err
	}
	if len(allowed) > 0 && !slices.Contains(allowed, a.user.Role) {
		return nil, auth.ErrRoleNotAllowed
	}
	return a.user, nil
}

type mockMonitor struct {
	mock.Mock
}

func (m *mockMonitor) Mismatch(ctx context.Context, user *auth.User, callerTenantID string, requested tenant.Tenant) {
	m.Called(ctx, user, callerTenantID, requested)
}

func fixtures() *memStore {
	return newMemStore(
		tenant.Tenant{ID: "t1", Slug: "t1", Name: "Tenant One", Active: true},
		tenant.Tenant{ID: "t2", Slug: "t2", Name: "Tenant Two", Subdomain: "two", Active: true},
		tenant.Tenant{ID: "t3", Slug: "closed", Name: "Closed", Active: false},
		tenant.Tenant{ID: "acme-id", Slug: "acme", Name: "Acme", Active: true},
	)
}

func student(tenantID string) *auth.User {
	return &auth.User{ID: "u-" + tenantID, Role: auth.RoleStudent, TenantID: tenantID}
}
