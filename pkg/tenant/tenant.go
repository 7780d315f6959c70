package tenant

import (
	"context"
	"time"
)

// Tenant is an isolated customer organization ("empresa").
// Slug and Subdomain are alternate lookup keys; only active tenants resolve.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Subdomain string    `json:"subdomain,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Store loads tenants from the system of record.
type Store interface {
	// FindActive returns the active tenant whose slug or subdomain equals key.
	// Returns ErrTenantNotFound when no active row matches.
	FindActive(ctx context.Context, key string) (*Tenant, error)

	// FindByID returns the tenant with the given id regardless of its state.
	// Returns ErrTenantNotFound when the id is unknown.
	FindByID(ctx context.Context, id string) (*Tenant, error)
}
