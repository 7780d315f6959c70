// Package portal mounts the tenant-scoped HTTP surface: health probes, the
// auth landing page, tenant pages and the tenant APIs.
package portal

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/tenantguard/pkg/access"
	"github.com/dmitrymomot/tenantguard/pkg/auth"
	"github.com/dmitrymomot/tenantguard/pkg/guard"
	"github.com/dmitrymomot/tenantguard/pkg/httpserver"
	"github.com/dmitrymomot/tenantguard/pkg/logger"
)

// SkipPrefixes are the top-level paths that never carry a tenant slug.
var SkipPrefixes = []string{"/api", "/auth", "/health"}

// RouterOptions wires the collaborators. Guard, Authn and Extractor are
// required.
type RouterOptions struct {
	Guard     *guard.Guard
	Authn     auth.Authenticator
	Extractor *access.Extractor
	Log       *slog.Logger

	// Readiness probes for /health/ready.
	Checks       []httpserver.Check
	ReadyTimeout time.Duration
}

// Router builds the portal routes.
//
//	GET /health/live
//	GET /health/ready
//	GET /auth
//	GET /api/context
//	GET /api/empresas/{empresa_id}/access
//	GET /api/t/{slug}/tenant
//	GET /{slug}
//	GET /{slug}/*
func Router(opts RouterOptions) chi.Router {
	if opts.Guard == nil || opts.Authn == nil || opts.Extractor == nil {
		panic("portal: guard, authenticator and extractor are required")
	}
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}
	h := &handlers{extractor: opts.Extractor, log: log.With(logger.Component("portal"))}

	r := chi.NewRouter()

	r.Get("/health/live", httpserver.Liveness())
	r.Get("/health/ready", httpserver.Readiness(log, opts.ReadyTimeout, opts.Checks...))

	r.Get("/auth", h.authPage)

	r.Route("/api", func(api chi.Router) {
		api.Group(func(authed chi.Router) {
			authed.Use(auth.Middleware(opts.Authn, log))
			authed.Get("/context", h.callerContext)
			authed.With(access.RequireAccess(opts.Extractor, urlParam("empresa_id"))).
				Get("/empresas/{empresa_id}/access", h.accessGranted)
		})
		api.With(opts.Guard.API(guard.URLParam("slug"))).
			Get("/t/{slug}/tenant", h.tenantInfo)
	})

	page := opts.Guard.Page(guard.URLParam("slug"))
	r.With(page).Get("/{slug}", h.tenantPage)
	r.With(page).Get("/{slug}/*", h.tenantPage)

	return r
}

func urlParam(name string) access.RequestedTenant {
	return func(r *http.Request) string {
		return chi.URLParam(r, name)
	}
}
