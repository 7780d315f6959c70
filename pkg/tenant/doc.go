// Package tenant resolves URL slugs to tenants ("empresas").
//
// Resolution runs in two stages. Routing headers set by HeaderMiddleware
// (X-Tenant-ID, X-Tenant-Slug, X-Tenant-Name) are trusted when they describe
// the requested slug. Otherwise the Store is queried for an active tenant
// whose slug or subdomain matches. The outcome is a typed Resolution whose
// Source tells the stages apart; a miss is not an error.
//
// Basic usage:
//
//	resolver := tenant.NewResolver(store,
//		tenant.WithCache(cache, 30*time.Second),
//		tenant.WithLogger(log),
//	)
//
//	res, err := resolver.Resolve(ctx, r.Header, "acme")
//	if err != nil {
//		// store unavailable
//	}
//	if !res.Found() {
//		// unknown or inactive tenant
//	}
//
// Caching is optional. NewRistrettoCache keeps tenants in process,
// NewRedisCache shares them between instances. Only active tenants are
// cached, and Resolver.Invalidate drops entries after a tenant changes.
//
// The resolved tenant travels in the request context:
//
//	ctx = tenant.WithTenant(ctx, res.Tenant)
//	id, ok := tenant.IDFromContext(ctx)
package tenant
