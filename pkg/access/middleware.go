package access

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/tenantguard/core"
	"github.com/dmitrymomot/tenantguard/pkg/auth"
	"github.com/dmitrymomot/tenantguard/pkg/logger"
)

// RequestedTenant returns the tenant id a request targets.
type RequestedTenant func(r *http.Request) string

// RequireAccess rejects requests whose caller may not access the requested
// tenant. It expects auth.Middleware upstream and responds 401 when no user
// is present. Denials are a bare 403 with no resource details. Allowed
// requests carry the Context for FromContext.
func RequireAccess(e *Extractor, requested RequestedTenant) func(http.Handler) http.Handler {
	if e == nil {
		panic("access: extractor cannot be nil")
	}
	if requested == nil {
		panic("access: requested tenant func cannot be nil")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok {
				core.Render(w, r, core.JSONError(core.ErrUnauthorized), e.log)
				return
			}

			c := e.GetContext(r.Context(), r, user)
			target := requested(r)
			if !Validate(c, target) {
				e.log.InfoContext(r.Context(), "tenant access denied",
					logger.UserID(user.ID), logger.TenantID(c.TenantID),
					logger.Role(c.Role), slogRequested(target))
				core.Render(w, r, core.JSONError(core.ErrForbidden), e.log)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), c)))
		})
	}
}

func slogRequested(id string) slog.Attr {
	return slog.String("requested_tenant_id", id)
}
