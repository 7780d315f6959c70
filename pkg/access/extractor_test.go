package access_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/tenantguard/pkg/access"
	"github.com/dmitrymomot/tenantguard/pkg/auth"
	"github.com/dmitrymomot/tenantguard/pkg/logger"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

type mockMemberships struct {
	mock.Mock
}

func (m *mockMemberships) ActiveMembership(ctx context.Context, userID string) (*access.Membership, error) {
	args := m.Called(ctx, userID)
	mb, _ := args.Get(0).(*access.Membership)
	return mb, args.Error(1)
}

func TestExtractor_GetContext(t *testing.T) {
	t.Parallel()

	get := func(target string) *http.Request {
		return httptest.NewRequest(http.MethodGet, target, nil)
	}

	t.Run("superadmin override ignores membership", func(t *testing.T) {
		t.Parallel()

		store := &mockMemberships{}
		e := access.NewExtractor(store)
		user := &auth.User{ID: "root", Role: auth.RoleSuperAdmin, TenantID: "t1"}

		c := e.GetContext(context.Background(), get("/api/context?empresa_id=t9"), user)
		assert.Equal(t, "t9", c.TenantID)
		assert.True(t, c.IsSuperAdmin)
		store.AssertNotCalled(t, "ActiveMembership", mock.Anything, mock.Anything)
	})

	t.Run("override ignored for non-superadmin", func(t *testing.T) {
		t.Parallel()

		store := &mockMemberships{}
		store.On("ActiveMembership", mock.Anything, "u1").
			Return(&access.Membership{UserID: "u1", TenantID: "t1", Active: true}, nil).Once()
		e := access.NewExtractor(store)

		c := e.GetContext(context.Background(), get("/api/context?empresa_id=t9"),
			&auth.User{ID: "u1", Role: auth.RoleUsuario})
		assert.Equal(t, "t1", c.TenantID)
		assert.False(t, c.IsSuperAdmin)
		store.AssertExpectations(t)
	})

	t.Run("superadmin without override uses membership", func(t *testing.T) {
		t.Parallel()

		store := &mockMemberships{}
		store.On("ActiveMembership", mock.Anything, "root").
			Return(&access.Membership{UserID: "root", TenantID: "t3", Active: true, IsAdmin: true}, nil).Once()
		e := access.NewExtractor(store)

		c := e.GetContext(context.Background(), get("/api/context"),
			&auth.User{ID: "root", Role: auth.RoleSuperAdmin})
		assert.Equal(t, "t3", c.TenantID)
		assert.True(t, c.IsTenantAdmin)
		assert.True(t, c.IsSuperAdmin)
	})

	t.Run("no membership falls back to metadata", func(t *testing.T) {
		t.Parallel()

		store := &mockMemberships{}
		store.On("ActiveMembership", mock.Anything, "u1").Return(nil, access.ErrMembershipNotFound).Once()
		e := access.NewExtractor(store)

		c := e.GetContext(context.Background(), get("/"),
			&auth.User{ID: "u1", Role: auth.RoleStudent, MetadataTenantID: "t5"})
		assert.Equal(t, "t5", c.TenantID)
	})

	t.Run("soft deleted membership falls back to metadata", func(t *testing.T) {
		t.Parallel()

		deleted := time.Now()
		store := &mockMemberships{}
		store.On("ActiveMembership", mock.Anything, "u1").
			Return(&access.Membership{UserID: "u1", TenantID: "t1", Active: true, DeletedAt: &deleted}, nil).Once()
		e := access.NewExtractor(store)

		c := e.GetContext(context.Background(), get("/"), &auth.User{ID: "u1", Role: auth.RoleStudent})
		assert.False(t, c.HasTenant())
	})

	t.Run("lookup error logs and falls back", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		store := &mockMemberships{}
		store.On("ActiveMembership", mock.Anything, "u1").Return(nil, errors.New("timeout")).Once()
		e := access.NewExtractor(store, access.WithLogger(logger.New(logger.WithOutput(&buf))))

		c := e.GetContext(context.Background(), get("/"),
			&auth.User{ID: "u1", Role: auth.RoleUsuario, MetadataTenantID: "t2"})
		assert.Equal(t, "t2", c.TenantID)
		assert.Contains(t, buf.String(), `"level":"WARN"`)
		assert.Contains(t, buf.String(), "timeout")
		store.AssertNumberOfCalls(t, "ActiveMembership", 1)
	})

	t.Run("nil user yields empty context", func(t *testing.T) {
		t.Parallel()

		e := access.NewExtractor(&mockMemberships{})
		assert.Equal(t, access.Context{}, e.GetContext(context.Background(), get("/"), nil))
	})

	t.Run("fills details from resolved tenant", func(t *testing.T) {
		t.Parallel()

		store := &mockMemberships{}
		store.On("ActiveMembership", mock.Anything, "u1").
			Return(&access.Membership{UserID: "u1", TenantID: "t1", Active: true}, nil).Once()
		e := access.NewExtractor(store)

		ctx := tenant.WithTenant(context.Background(), tenant.Tenant{ID: "t1", Slug: "acme", Name: "Acme"})
		c := e.GetContext(ctx, get("/"), &auth.User{ID: "u1", Role: auth.RoleUsuario})
		assert.Equal(t, "acme", c.TenantSlug)
		assert.Equal(t, "Acme", c.TenantName)
	})
}
