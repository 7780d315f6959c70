package tenant

import "errors"

var (
	// ErrTenantNotFound is returned by stores when no active tenant matches.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInvalidSlug is returned when a slug is not a valid DNS label.
	ErrInvalidSlug = errors.New("invalid tenant slug")

	// ErrNoTenantInContext is returned when no tenant is found in context.
	ErrNoTenantInContext = errors.New("no tenant in context")
)
