package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/tenantguard/core"
	"github.com/dmitrymomot/tenantguard/pkg/logger"
)

// Middleware authenticates API requests and stores the user in the request
// context. Failures respond 401 or 403 JSON.
func Middleware(authn Authenticator, log *slog.Logger, allowed ...Role) func(http.Handler) http.Handler {
	if authn == nil {
		panic("auth: authenticator cannot be nil")
	}
	if log == nil {
		log = logger.Discard()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := authn.Authenticate(r, allowed...)
			if err != nil {
				httpErr := core.ErrUnauthorized
				if errors.Is(err, ErrRoleNotAllowed) {
					httpErr = core.ErrForbidden
				}
				log.DebugContext(r.Context(), "request not authenticated", logger.Error(err))
				core.Render(w, r, core.JSONError(httpErr), log)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
