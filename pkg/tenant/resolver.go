package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/tenantguard/pkg/logger"
	"github.com/dmitrymomot/tenantguard/pkg/slug"
)

// Source tells which stage of the resolver produced a Resolution.
type Source string

const (
	// SourceHeader means the upstream routing headers matched the slug.
	SourceHeader Source = "header"
	// SourceDatabase means the tenant was loaded by slug or subdomain.
	SourceDatabase Source = "database"
	// SourceNotFound means no active tenant matches the slug.
	SourceNotFound Source = "not_found"
)

// Resolution is the typed outcome of resolving a slug.
type Resolution struct {
	Source Source
	// Slug is the normalized slug that was resolved.
	Slug string
	// Tenant is a copy; zero value when Source is SourceNotFound.
	Tenant Tenant
	// Cached reports that a database resolution was served from cache.
	Cached bool
}

// Found reports whether an active tenant was resolved.
func (r Resolution) Found() bool {
	return r.Source == SourceHeader || r.Source == SourceDatabase
}

// TenantID returns the resolved tenant id or an empty string.
func (r Resolution) TenantID() string {
	return r.Tenant.ID
}

// Resolver maps URL slugs to tenants. It trusts the upstream routing headers
// when they describe the requested slug and falls back to the store
// otherwise. A Resolver is safe for concurrent use.
type Resolver struct {
	store    Store
	cache    Cache
	cacheTTL time.Duration
	log      *slog.Logger
	counter  metric.Int64Counter
	group    singleflight.Group
	timeout  time.Duration
}

// DefaultLookupTimeout bounds a shared store lookup.
const DefaultLookupTimeout = 5 * time.Second

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCache enables caching of database lookups. Only active tenants are
// cached and entries live for ttl.
func WithCache(c Cache, ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		if c != nil && ttl > 0 {
			r.cache = c
			r.cacheTTL = ttl
		}
	}
}

// WithLookupTimeout bounds each shared store lookup. Non-positive values
// keep DefaultLookupTimeout.
func WithLookupTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger sets the logger used for lookup failures and cache errors.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// WithMeterProvider records resolution counts on the given provider instead
// of the global one.
func WithMeterProvider(mp metric.MeterProvider) ResolverOption {
	return func(r *Resolver) {
		if mp != nil {
			r.counter = newResolutionCounter(mp)
		}
	}
}

// NewResolver creates a resolver backed by store.
func NewResolver(store Store, opts ...ResolverOption) *Resolver {
	if store == nil {
		panic("tenant: store cannot be nil")
	}
	r := &Resolver{
		store:   store,
		cache:   NewNoOpCache(),
		log:     logger.Discard(),
		timeout: DefaultLookupTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.counter == nil {
		r.counter = newResolutionCounter(nil)
	}
	r.log = r.log.With(logger.Component("tenant_resolver"))
	return r
}

// Resolve maps a URL slug to an active tenant.
//
// The header fast path is taken when the upstream X-Tenant-Slug header equals
// the requested slug and X-Tenant-ID is set; no store call is made. Otherwise
// the store is queried by slug or subdomain. A miss is reported as
// SourceNotFound with a nil error; only infrastructure failures are returned
// as errors.
func (r *Resolver) Resolve(ctx context.Context, h http.Header, rawSlug string) (Resolution, error) {
	s := slug.Normalize(rawSlug)
	if !slug.Valid(s) {
		r.record(ctx, SourceNotFound)
		return Resolution{Source: SourceNotFound, Slug: s}, nil
	}

	if t, ok := FromHeaders(h); ok && t.Slug == s {
		r.record(ctx, SourceHeader)
		return Resolution{Source: SourceHeader, Slug: s, Tenant: t}, nil
	}

	return r.Lookup(ctx, s)
}

// Lookup runs the database stage only. Concurrent lookups of the same slug
// share a single store call. The shared call is detached from the caller
// that started it, so a cancelled caller only abandons its own wait.
func (r *Resolver) Lookup(ctx context.Context, rawSlug string) (Resolution, error) {
	s := slug.Normalize(rawSlug)
	if !slug.Valid(s) {
		r.record(ctx, SourceNotFound)
		return Resolution{Source: SourceNotFound, Slug: s}, nil
	}

	if t, ok := r.cache.Get(ctx, s); ok && t != nil && t.Active {
		r.record(ctx, SourceDatabase)
		return Resolution{Source: SourceDatabase, Slug: s, Tenant: *t, Cached: true}, nil
	}

	ch := r.group.DoChan(s, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		t, err := r.store.FindActive(lctx, s)
		if err != nil {
			return nil, err
		}
		return *t, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return Resolution{Slug: s}, fmt.Errorf("resolve tenant %q: %w", s, ctx.Err())
	case res = <-ch:
	}
	v, err := res.Val, res.Err
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			r.record(ctx, SourceNotFound)
			return Resolution{Source: SourceNotFound, Slug: s}, nil
		}
		r.log.ErrorContext(ctx, "tenant lookup failed", logger.TenantSlug(s), logger.Error(err))
		return Resolution{Slug: s}, fmt.Errorf("resolve tenant %q: %w", s, err)
	}

	t := v.(Tenant)
	if !t.Active {
		r.record(ctx, SourceNotFound)
		return Resolution{Source: SourceNotFound, Slug: s}, nil
	}

	if err := r.cache.Set(ctx, s, t, r.cacheTTL); err != nil {
		r.log.WarnContext(ctx, "tenant cache write failed", logger.TenantSlug(s), logger.Error(err))
	}

	r.record(ctx, SourceDatabase)
	return Resolution{Source: SourceDatabase, Slug: s, Tenant: t}, nil
}

// TenantByID loads a tenant by id, bypassing cache and headers. Used to find
// a caller's own tenant home.
func (r *Resolver) TenantByID(ctx context.Context, id string) (Tenant, error) {
	if id == "" {
		return Tenant{}, ErrTenantNotFound
	}
	t, err := r.store.FindByID(ctx, id)
	if err != nil {
		return Tenant{}, err
	}
	return *t, nil
}

// Invalidate drops cached entries for the given slugs or subdomains.
func (r *Resolver) Invalidate(ctx context.Context, keys ...string) error {
	normalized := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = slug.Normalize(k); k != "" {
			normalized = append(normalized, k)
		}
	}
	if len(normalized) == 0 {
		return nil
	}
	return r.cache.Delete(ctx, normalized...)
}
