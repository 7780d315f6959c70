package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the caller identifier under the key "user_id".
func UserID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("user_id", id)
}

// TenantID records a tenant identifier under the key "tenant_id".
func TenantID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("tenant_id", id)
}

// TenantSlug records a URL tenant slug under the key "tenant_slug".
func TenantSlug(slug string) slog.Attr {
	return slog.String("tenant_slug", slug)
}

func Role(role string) slog.Attr {
	return slog.String("role", role)
}

// Source records where a value was resolved from (header, database, ...).
func Source(source string) slog.Attr {
	return slog.String("source", source)
}

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Path(path string) slog.Attr {
	return slog.String("path", path)
}
