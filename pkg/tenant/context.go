package tenant

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithTenant stores a copy of t in the context. The stored value must not be
// modified for the rest of the request.
func WithTenant(ctx context.Context, t Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, &t)
}

func FromContext(ctx context.Context) (Tenant, bool) {
	t, ok := ctx.Value(contextKey{}).(*Tenant)
	if !ok || t == nil {
		return Tenant{}, false
	}
	return *t, true
}

// IDFromContext returns the resolved tenant id for the request.
func IDFromContext(ctx context.Context) (string, bool) {
	t, ok := FromContext(ctx)
	if !ok {
		return "", false
	}
	return t.ID, true
}

// LoggerExtractor adds "tenant_id" to log records for tenant-scoped requests.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id), true
		}
		return slog.Attr{}, false
	}
}
