package guard_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/tenantguard/pkg/auth"
	"github.com/dmitrymomot/tenantguard/pkg/guard"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

func echoTenant(w http.ResponseWriter, r *http.Request) {
	t, ok := tenant.FromContext(r.Context())
	u, uok := auth.UserFromContext(r.Context())
	if !ok || !uok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	w.Header().Set("X-Tenant", t.ID)
	w.Header().Set("X-User", u.ID)
	w.WriteHeader(http.StatusOK)
}

func pageRouter(g *guard.Guard) http.Handler {
	r := chi.NewRouter()
	r.With(g.Page(guard.URLParam("slug"))).Get("/{slug}", echoTenant)
	return r
}

func apiRouter(g *guard.Guard, opts ...guard.RequireOption) http.Handler {
	r := chi.NewRouter()
	r.With(g.API(guard.URLParam("slug"), opts...)).Get("/api/t/{slug}/tenant", echoTenant)
	return r
}

func TestPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		authn    auth.Authenticator
		store    *memStore
		path     string
		status   int
		location string
		tenant   string
	}{
		{"allowed", fixedAuth{user: student("t1")}, fixtures(), "/t1", http.StatusOK, "", "t1"},
		{"mismatch", fixedAuth{user: student("t1")}, fixtures(), "/t2", http.StatusSeeOther, "/t1", ""},
		{"not found", fixedAuth{user: &auth.User{ID: "u0", Role: auth.RoleStudent}}, fixtures(), "/ghost", http.StatusSeeOther, "/auth", ""},
		{"unauthenticated", fixedAuth{err: auth.ErrTokenMissing}, fixtures(), "/t1", http.StatusSeeOther, "/auth", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := guard.New(tt.authn, tenant.NewResolver(tt.store))
			w := httptest.NewRecorder()
			pageRouter(g).ServeHTTP(w, get(tt.path))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.location, w.Header().Get("Location"))
			assert.Equal(t, tt.tenant, w.Header().Get("X-Tenant"))
		})
	}

	t.Run("infrastructure failure", func(t *testing.T) {
		t.Parallel()

		store := fixtures()
		store.err = errors.New("db down")
		g := guard.New(fixedAuth{user: student("t1")}, tenant.NewResolver(store))
		w := httptest.NewRecorder()
		pageRouter(g).ServeHTTP(w, get("/t1"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":{"code":"internal_server_error","message":"Internal Server Error"}}`, w.Body.String())
		assert.NotContains(t, w.Body.String(), "db down")
	})
}

func TestAPI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		authn  auth.Authenticator
		path   string
		opts   []guard.RequireOption
		status int
		body   string
	}{
		{
			name:   "allowed",
			authn:  fixedAuth{user: student("t1")},
			path:   "/api/t/t1/tenant",
			status: http.StatusOK,
		},
		{
			name:   "unauthenticated",
			authn:  fixedAuth{err: auth.ErrTokenInvalid},
			path:   "/api/t/t1/tenant",
			status: http.StatusUnauthorized,
			body:   `{"error":{"code":"unauthorized","message":"Unauthorized"}}`,
		},
		{
			name:   "role not allowed",
			authn:  fixedAuth{user: student("t1")},
			path:   "/api/t/t1/tenant",
			opts:   []guard.RequireOption{guard.AllowRoles(auth.RoleUsuario)},
			status: http.StatusForbidden,
			body:   `{"error":{"code":"forbidden","message":"Forbidden"}}`,
		},
		{
			name:   "not found",
			authn:  fixedAuth{user: student("t1")},
			path:   "/api/t/ghost/tenant",
			status: http.StatusNotFound,
			body:   `{"error":{"code":"not_found","message":"Not Found"}}`,
		},
		{
			name:   "mismatch",
			authn:  fixedAuth{user: student("t1")},
			path:   "/api/t/t2/tenant",
			status: http.StatusForbidden,
			body:   `{"error":{"code":"forbidden","message":"Forbidden"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := guard.New(tt.authn, tenant.NewResolver(fixtures()))
			w := httptest.NewRecorder()
			apiRouter(g, tt.opts...).ServeHTTP(w, get(tt.path))

			assert.Equal(t, tt.status, w.Code)
			assert.Empty(t, w.Header().Get("Location"))
			if tt.body != "" {
				assert.JSONEq(t, tt.body, w.Body.String())
			}
		})
	}

	t.Run("infrastructure failure is generic", func(t *testing.T) {
		t.Parallel()

		store := fixtures()
		store.err = errors.New("pq: password authentication failed")
		g := guard.New(fixedAuth{user: student("t1")}, tenant.NewResolver(store))
		w := httptest.NewRecorder()
		apiRouter(g).ServeHTTP(w, get("/api/t/t1/tenant"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":{"code":"internal_server_error","message":"Internal Server Error"}}`, w.Body.String())
	})
}
