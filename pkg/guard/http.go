package guard

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/tenantguard/core"
	"github.com/dmitrymomot/tenantguard/pkg/auth"
	"github.com/dmitrymomot/tenantguard/pkg/logger"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

// SlugFunc reads the tenant slug from a request.
type SlugFunc func(r *http.Request) string

// URLParam reads the slug from a chi route parameter.
func URLParam(name string) SlugFunc {
	return func(r *http.Request) string {
		return chi.URLParam(r, name)
	}
}

// Page guards server-rendered routes. Redirect decisions become 303
// responses and authentication failures go to the auth path.
func (g *Guard) Page(slugFrom SlugFunc, opts ...RequireOption) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := g.RequireTenantUser(r, slugFrom(r), opts...)
			switch {
			case isAuthError(err):
				core.Render(w, r, core.Redirect(g.authPath), g.log)
				return
			case err != nil:
				g.log.ErrorContext(r.Context(), "tenant guard failed", logger.Error(err))
				core.Render(w, r, core.JSONError(core.ErrInternalServerError), g.log)
				return
			case !d.Allowed():
				core.Render(w, r, core.Redirect(d.Redirect), g.log)
				return
			}
			next.ServeHTTP(w, r.WithContext(withDecision(r, d)))
		})
	}
}

// API guards JSON routes. Nothing is redirected: unknown tenants are 404,
// mismatches 403. Error bodies never carry details.
func (g *Guard) API(slugFrom SlugFunc, opts ...RequireOption) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := g.RequireTenantUser(r, slugFrom(r), opts...)
			if err != nil {
				httpErr := core.ErrInternalServerError
				switch {
				case errors.Is(err, auth.ErrRoleNotAllowed):
					httpErr = core.ErrForbidden
				case errors.Is(err, auth.ErrUnauthenticated):
					httpErr = core.ErrUnauthorized
				default:
					g.log.ErrorContext(r.Context(), "tenant guard failed", logger.Error(err))
				}
				core.Render(w, r, core.JSONError(httpErr), g.log)
				return
			}
			switch d.Reason {
			case ReasonTenantNotFound:
				core.Render(w, r, core.JSONError(core.ErrNotFound), g.log)
				return
			case ReasonTenantMismatch:
				core.Render(w, r, core.JSONError(core.ErrForbidden), g.log)
				return
			}
			next.ServeHTTP(w, r.WithContext(withDecision(r, d)))
		})
	}
}

func withDecision(r *http.Request, d Decision) context.Context {
	ctx := tenant.WithTenant(r.Context(), d.Tenant)
	return auth.WithUser(ctx, d.User)
}

func isAuthError(err error) bool {
	return errors.Is(err, auth.ErrUnauthenticated) || errors.Is(err, auth.ErrRoleNotAllowed)
}
