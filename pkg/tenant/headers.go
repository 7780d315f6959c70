package tenant

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/tenantguard/pkg/logger"
)

// Routing headers set by HeaderMiddleware and trusted by Resolver.Resolve.
const (
	HeaderTenantID   = "X-Tenant-ID"
	HeaderTenantSlug = "X-Tenant-Slug"
	// HeaderTenantName is URL-encoded.
	HeaderTenantName = "X-Tenant-Name"
)

// FromHeaders reads the routing headers. It reports false unless both the
// id and slug headers are present. A name that fails to decode is returned
// as sent.
func FromHeaders(h http.Header) (Tenant, bool) {
	if h == nil {
		return Tenant{}, false
	}
	id := strings.TrimSpace(h.Get(HeaderTenantID))
	s := strings.ToLower(strings.TrimSpace(h.Get(HeaderTenantSlug)))
	if id == "" || s == "" {
		return Tenant{}, false
	}
	raw := h.Get(HeaderTenantName)
	name, err := url.PathUnescape(raw)
	if err != nil {
		name = raw
	}
	return Tenant{ID: id, Slug: s, Name: name, Active: true}, true
}

// SetHeaders writes the routing headers for t.
func SetHeaders(h http.Header, t Tenant) {
	h.Set(HeaderTenantID, t.ID)
	h.Set(HeaderTenantSlug, t.Slug)
	h.Set(HeaderTenantName, url.PathEscape(t.Name))
}

// StripHeaders removes any routing headers from h.
func StripHeaders(h http.Header) {
	h.Del(HeaderTenantID)
	h.Del(HeaderTenantSlug)
	h.Del(HeaderTenantName)
}

type middlewareConfig struct {
	skipPrefixes []string
	log          *slog.Logger
}

// MiddlewareOption configures HeaderMiddleware.
type MiddlewareOption func(*middlewareConfig)

// WithSkipPrefixes leaves requests under any of the path prefixes untouched
// apart from header stripping. Prefixes match whole segments: "/api" covers
// "/api" and "/api/x" but not "/apiary".
func WithSkipPrefixes(prefixes ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.skipPrefixes = append(c.skipPrefixes, prefixes...)
	}
}

// WithMiddlewareLogger sets the logger for lookup failures.
func WithMiddlewareLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// HeaderMiddleware plays the upstream routing layer. Client-supplied routing
// headers are always dropped. When extract yields a slug that resolves to an
// active tenant, the routing headers are set on the request so downstream
// resolution can skip the store. Lookup failures never block the request;
// the guard downstream falls back to its own lookup.
func HeaderMiddleware(resolver *Resolver, extract SlugExtractor, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	if resolver == nil {
		panic("tenant: resolver cannot be nil")
	}
	if extract == nil {
		panic("tenant: slug extractor cannot be nil")
	}
	cfg := &middlewareConfig{log: logger.Discard()}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			StripHeaders(r.Header)

			for _, p := range cfg.skipPrefixes {
				if underPrefix(r.URL.Path, p) {
					next.ServeHTTP(w, r)
					return
				}
			}

			s := extract(r)
			if s == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := resolver.Lookup(r.Context(), s)
			if err != nil {
				cfg.log.WarnContext(r.Context(), "routing lookup failed",
					logger.TenantSlug(s), logger.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if res.Found() {
				SetHeaders(r.Header, res.Tenant)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func underPrefix(path, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
