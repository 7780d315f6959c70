package access

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/tenantguard/pkg/auth"
	"github.com/dmitrymomot/tenantguard/pkg/logger"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

// Extractor determines the tenant a caller acts for.
type Extractor struct {
	store MembershipStore
	log   *slog.Logger
}

type ExtractorOption func(*Extractor)

// WithLogger sets the logger used for degraded membership lookups.
func WithLogger(l *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		if l != nil {
			e.log = l
		}
	}
}

// NewExtractor creates an extractor that reads memberships from store.
func NewExtractor(store MembershipStore, opts ...ExtractorOption) *Extractor {
	if store == nil {
		panic("access: membership store cannot be nil")
	}
	e := &Extractor{store: store, log: logger.Discard()}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With(logger.Component("access_extractor"))
	return e
}

// GetContext never fails. The tenant id is chosen in this order:
//  1. the empresa_id query parameter, for superadmins only;
//  2. the caller's active membership;
//  3. the tenant id cached in the caller's session metadata.
//
// A failed membership lookup is logged and falls through to step 3. If the
// request context already holds a resolved tenant with the chosen id, its
// slug and name are filled in.
func (e *Extractor) GetContext(ctx context.Context, r *http.Request, user *auth.User) Context {
	if user == nil {
		return Context{}
	}

	c := Context{
		UserID:       user.ID,
		Role:         user.Role.String(),
		IsSuperAdmin: user.IsSuperAdmin(),
	}

	if c.IsSuperAdmin && r != nil {
		if override := strings.TrimSpace(r.URL.Query().Get(OverrideParam)); override != "" {
			c.TenantID = override
			return withTenantDetails(ctx, c)
		}
	}

	m, err := e.store.ActiveMembership(ctx, user.ID)
	switch {
	case err == nil && m.Usable():
		c.TenantID = m.TenantID
		c.IsTenantAdmin = m.IsAdmin
	case err != nil && !errors.Is(err, ErrMembershipNotFound):
		e.log.WarnContext(ctx, "membership lookup failed, using session metadata",
			logger.UserID(user.ID), logger.Error(err))
		c.TenantID = user.MetadataTenantID
	default:
		c.TenantID = user.MetadataTenantID
	}

	return withTenantDetails(ctx, c)
}

func withTenantDetails(ctx context.Context, c Context) Context {
	if t, ok := tenant.FromContext(ctx); ok && c.TenantID != "" && t.ID == c.TenantID {
		c.TenantSlug = t.Slug
		c.TenantName = t.Name
	}
	return c
}
