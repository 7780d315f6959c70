// Package guard protects tenant-scoped routes.
//
// RequireTenantUser authenticates the caller, resolves the URL slug and
// checks that the caller belongs to the resolved tenant. The outcome is a
// Decision: either the route may proceed with Decision.TenantID, or the
// caller is sent elsewhere (Decision.Redirect):
//
//   - unknown or inactive slug: the caller's own tenant home, or /auth when
//     they have none;
//   - caller from another tenant: the caller's own tenant home. Superadmins
//     are never redirected.
//
// Page and API adapt the decision to HTTP. Page issues 303 redirects; API
// answers with JSON errors (401, 403, 404, 500) instead.
//
//	g := guard.New(authn, resolver, guard.WithMonitor(monitor))
//	r.With(g.Page(guard.URLParam("slug"))).Get("/{slug}", dashboard)
//	r.With(g.API(guard.URLParam("slug"))).Get("/api/t/{slug}/tenant", show)
package guard
