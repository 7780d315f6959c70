package access

import (
	"context"
	"errors"
	"time"
)

// OverrideParam is the query parameter superadmins use to act on behalf of
// a tenant.
const OverrideParam = "empresa_id"

// ErrMembershipNotFound is returned by stores when the user has no active
// membership.
var ErrMembershipNotFound = errors.New("membership not found")

// Membership links a user to a tenant.
type Membership struct {
	UserID    string
	TenantID  string
	IsAdmin   bool
	Active    bool
	DeletedAt *time.Time
}

// Usable reports whether the membership grants tenant access.
func (m *Membership) Usable() bool {
	return m != nil && m.Active && m.DeletedAt == nil && m.TenantID != ""
}

// MembershipStore looks up a single user's membership. It deliberately has
// no listing operation.
type MembershipStore interface {
	// ActiveMembership returns the user's active, not soft-deleted
	// membership or ErrMembershipNotFound.
	ActiveMembership(ctx context.Context, userID string) (*Membership, error)
}

// Context is the per-request authorization view. It is never persisted.
type Context struct {
	TenantID   string `json:"tenant_id,omitempty"`
	TenantSlug string `json:"tenant_slug,omitempty"`
	TenantName string `json:"tenant_name,omitempty"`

	UserID       string `json:"user_id,omitempty"`
	Role         string `json:"role,omitempty"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	// IsTenantAdmin is true when the membership carries the admin flag.
	IsTenantAdmin bool `json:"is_tenant_admin,omitempty"`
}

// HasTenant reports whether a tenant was determined for the caller.
func (c Context) HasTenant() bool {
	return c.TenantID != ""
}

// Validate reports whether c may access requestedTenantID. An empty request
// is always denied, superadmins are always allowed, and everyone else needs
// an exact match.
func Validate(c Context, requestedTenantID string) bool {
	if requestedTenantID == "" {
		return false
	}
	if c.IsSuperAdmin {
		return true
	}
	return c.TenantID == requestedTenantID
}

type contextKey struct{}

// WithContext stores c in ctx.
func WithContext(ctx context.Context, c Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the Context stored by RequireAccess.
func FromContext(ctx context.Context) (Context, bool) {
	c, ok := ctx.Value(contextKey{}).(Context)
	return c, ok
}
