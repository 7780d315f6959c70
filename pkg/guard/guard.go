package guard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/tenantguard/pkg/access"
	"github.com/dmitrymomot/tenantguard/pkg/auth"
	"github.com/dmitrymomot/tenantguard/pkg/logger"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

// DefaultAuthPath is where callers without a usable tenant are sent.
const DefaultAuthPath = "/auth"

// TenantResolver is the subset of *tenant.Resolver the guard needs.
type TenantResolver interface {
	Resolve(ctx context.Context, h http.Header, slug string) (tenant.Resolution, error)
	TenantByID(ctx context.Context, id string) (tenant.Tenant, error)
}

// ContextExtractor determines the tenant a caller belongs to.
type ContextExtractor interface {
	GetContext(ctx context.Context, r *http.Request, user *auth.User) access.Context
}

// MismatchMonitor observes callers hitting another tenant's URL.
type MismatchMonitor interface {
	Mismatch(ctx context.Context, user *auth.User, callerTenantID string, requested tenant.Tenant)
}

// Reason explains why a Decision redirects.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonTenantNotFound Reason = "tenant_not_found"
	ReasonTenantMismatch Reason = "tenant_mismatch"
)

// Decision is the outcome of RequireTenantUser.
type Decision struct {
	User     *auth.User
	TenantID string
	Tenant   tenant.Tenant
	// Redirect is set when the route must not proceed.
	Redirect string
	Reason   Reason
}

// Allowed reports whether the route may proceed.
func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

// Guard composes authentication, tenant resolution and membership checks.
type Guard struct {
	authn    auth.Authenticator
	resolver TenantResolver
	members  ContextExtractor
	monitor  MismatchMonitor
	log      *slog.Logger
	authPath string
}

type Option func(*Guard)

// WithExtractor determines the caller's tenant from their membership
// instead of the tenant claim in the session token.
func WithExtractor(e ContextExtractor) Option {
	return func(g *Guard) { g.members = e }
}

// WithMonitor reports every tenant mismatch to m.
func WithMonitor(m MismatchMonitor) Option {
	return func(g *Guard) {
		if m != nil {
			g.monitor = m
		}
	}
}

// WithLogger sets the logger for infrastructure failures.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.log = l
		}
	}
}

// WithAuthPath overrides DefaultAuthPath.
func WithAuthPath(p string) Option {
	return func(g *Guard) {
		if p != "" {
			g.authPath = p
		}
	}
}

// New creates a guard that authenticates with authn and resolves slugs with
// resolver. It panics when either is nil.
func New(authn auth.Authenticator, resolver TenantResolver, opts ...Option) *Guard {
	if authn == nil {
		panic("guard: authenticator cannot be nil")
	}
	if resolver == nil {
		panic("guard: resolver cannot be nil")
	}
	g := &Guard{
		authn:    authn,
		resolver: resolver,
		monitor:  noopMonitor{},
		log:      logger.Discard(),
		authPath: DefaultAuthPath,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With(logger.Component("tenant_guard"))
	return g
}

type requireOptions struct {
	roles []auth.Role
}

// RequireOption tunes a single RequireTenantUser call.
type RequireOption func(*requireOptions)

// AllowRoles restricts the route to the given roles.
func AllowRoles(roles ...auth.Role) RequireOption {
	return func(o *requireOptions) {
		o.roles = append(o.roles, roles...)
	}
}

// RequireTenantUser decides whether the caller may use the tenant at slug.
// Authentication failures are returned as errors (auth.ErrUnauthenticated,
// auth.ErrRoleNotAllowed), as are resolver failures. Unknown tenants and
// tenant mismatches are not errors: they yield a Decision with Redirect set.
func (g *Guard) RequireTenantUser(r *http.Request, slug string, opts ...RequireOption) (Decision, error) {
	var o requireOptions
	for _, opt := range opts {
		opt(&o)
	}
	ctx := r.Context()

	user, err := g.authn.Authenticate(r, o.roles...)
	if err != nil {
		return Decision{}, err
	}

	res, err := g.resolver.Resolve(ctx, r.Header, slug)
	if err != nil {
		return Decision{User: user}, fmt.Errorf("guard: %w", err)
	}

	callerTenant := g.callerTenant(r, user)

	if !res.Found() {
		g.log.DebugContext(ctx, "tenant not found",
			logger.TenantSlug(res.Slug), logger.UserID(user.ID))
		return Decision{
			User:     user,
			Redirect: g.home(ctx, callerTenant, res.Slug),
			Reason:   ReasonTenantNotFound,
		}, nil
	}

	if callerTenant != "" && callerTenant != res.TenantID() && !user.IsSuperAdmin() {
		g.monitor.Mismatch(ctx, user, callerTenant, res.Tenant)
		return Decision{
			User:     user,
			Redirect: g.home(ctx, callerTenant, res.Slug),
			Reason:   ReasonTenantMismatch,
		}, nil
	}

	return Decision{User: user, TenantID: res.TenantID(), Tenant: res.Tenant}, nil
}

func (g *Guard) callerTenant(r *http.Request, user *auth.User) string {
	if g.members == nil {
		return user.TenantID
	}
	// Superadmin overrides only apply to API routes, never to page routing.
	bare := r.Clone(r.Context())
	bare.URL.RawQuery = ""
	return g.members.GetContext(r.Context(), bare, user).TenantID
}

// home returns the caller's tenant home. It falls back to the auth path
// when the caller has no tenant, their tenant is gone, or home is the slug
// that just failed, which would loop.
func (g *Guard) home(ctx context.Context, tenantID, failedSlug string) string {
	if tenantID == "" {
		return g.authPath
	}
	t, err := g.resolver.TenantByID(ctx, tenantID)
	if err != nil {
		g.log.WarnContext(ctx, "caller tenant lookup failed",
			logger.TenantID(tenantID), logger.Error(err))
		return g.authPath
	}
	if !t.Active || t.Slug == "" || t.Slug == failedSlug {
		return g.authPath
	}
	return "/" + url.PathEscape(t.Slug)
}

type noopMonitor struct{}

func (noopMonitor) Mismatch(context.Context, *auth.User, string, tenant.Tenant) {}
