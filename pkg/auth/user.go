package auth

import "slices"

// Role is the caller's platform role.
type Role string

const (
	RoleStudent Role = "student"
	// RoleUsuario is tenant staff.
	RoleUsuario    Role = "usuario"
	RoleSuperAdmin Role = "superadmin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleUsuario, RoleSuperAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// User is an authenticated caller.
type User struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	// TenantID is the caller's membership; empty when they belong to none.
	TenantID string `json:"tenant_id,omitempty"`
	// IsTenantAdmin is scoped to TenantID.
	IsTenantAdmin bool `json:"is_tenant_admin,omitempty"`
	// MetadataTenantID is the tenant id cached in session metadata. It is a
	// fallback signal only and may be stale.
	MetadataTenantID string `json:"-"`
}

func (u *User) IsSuperAdmin() bool {
	return u != nil && u.Role == RoleSuperAdmin
}

// HasRole reports whether the user's role is in allowed. An empty list
// allows every role.
func (u *User) HasRole(allowed ...Role) bool {
	if u == nil {
		return false
	}
	return len(allowed) == 0 || slices.Contains(allowed, u.Role)
}
