package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when the request carries no valid session.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrRoleNotAllowed is returned when the caller's role is outside the allow-list.
	ErrRoleNotAllowed = errors.New("role not allowed")
)

// Token errors. All wrap ErrUnauthenticated.
var (
	ErrTokenMissing = fmt.Errorf("%w: session token missing", ErrUnauthenticated)
	ErrTokenInvalid = fmt.Errorf("%w: session token invalid", ErrUnauthenticated)
	ErrTokenExpired = fmt.Errorf("%w: session token expired", ErrUnauthenticated)
)

var (
	ErrMissingSigningKey = errors.New("signing key is required")
	ErrUnknownRole       = errors.New("unknown role")
	ErrMissingSubject    = errors.New("user id is required")
)
