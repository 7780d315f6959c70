package auth_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantguard/pkg/auth"
	"github.com/dmitrymomot/tenantguard/pkg/logger"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	iss, authn := newPair(t)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, found := auth.UserFromContext(r.Context())
		require.True(t, found)
		_, _ = w.Write([]byte(u.ID))
	})

	t.Run("attaches user", func(t *testing.T) {
		t.Parallel()

		token, err := iss.Issue(auth.User{ID: "u1", Role: auth.RoleUsuario}, time.Hour)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		auth.Middleware(authn, nil)(ok).ServeHTTP(w, bearer(token))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "u1", w.Body.String())
	})

	t.Run("401 without token", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		auth.Middleware(authn, nil)(ok).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":{"code":"unauthorized","message":"Unauthorized"}}`, w.Body.String())
	})

	t.Run("403 for disallowed role", func(t *testing.T) {
		t.Parallel()

		token, err := iss.Issue(auth.User{ID: "u1", Role: auth.RoleStudent}, time.Hour)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		auth.Middleware(authn, nil, auth.RoleSuperAdmin)(ok).ServeHTTP(w, bearer(token))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":{"code":"forbidden","message":"Forbidden"}}`, w.Body.String())
	})
}

func TestUserContext(t *testing.T) {
	t.Parallel()

	_, ok := auth.UserFromContext(context.Background())
	assert.False(t, ok)

	ctx := auth.WithUser(context.Background(), &auth.User{ID: "u1", Role: auth.RoleSuperAdmin})
	u, ok := auth.UserFromContext(ctx)
	require.True(t, ok)
	assert.True(t, u.IsSuperAdmin())

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithContextExtractors(auth.LoggerExtractor()))
	log.InfoContext(ctx, "hello")
	assert.Contains(t, buf.String(), `"user_id":"u1"`)
}

func TestRole(t *testing.T) {
	t.Parallel()

	assert.True(t, auth.RoleStudent.Valid())
	assert.True(t, auth.RoleUsuario.Valid())
	assert.True(t, auth.RoleSuperAdmin.Valid())
	assert.False(t, auth.Role("admin").Valid())

	var nilUser *auth.User
	assert.False(t, nilUser.IsSuperAdmin())
	assert.False(t, nilUser.HasRole())

	u := &auth.User{Role: auth.RoleStudent}
	assert.True(t, u.HasRole())
	assert.False(t, u.HasRole(auth.RoleUsuario))
}
