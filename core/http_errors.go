package core

import "net/http"

// HTTPError pairs an HTTP status code with a machine-readable key.
// The key is what clients see as the error code; the message is always the
// generic status text.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string {
	return e.Key
}

var (
	ErrBadRequest      = HTTPError{Code: http.StatusBadRequest, Key: "bad_request"}
	ErrUnauthorized    = HTTPError{Code: http.StatusUnauthorized, Key: "unauthorized"}
	ErrForbidden       = HTTPError{Code: http.StatusForbidden, Key: "forbidden"}
	ErrNotFound        = HTTPError{Code: http.StatusNotFound, Key: "not_found"}
	ErrTooManyRequests = HTTPError{Code: http.StatusTooManyRequests, Key: "too_many_requests"}
)

var (
	ErrInternalServerError = HTTPError{Code: http.StatusInternalServerError, Key: "internal_server_error"}
	ErrServiceUnavailable  = HTTPError{Code: http.StatusServiceUnavailable, Key: "service_unavailable"}
)

// NewHTTPError creates a custom HTTP error.
//
// Example:
//
//	err := core.NewHTTPError(http.StatusForbidden, "tenant_mismatch")
func NewHTTPError(code int, key string) HTTPError {
	return HTTPError{Code: code, Key: key}
}
