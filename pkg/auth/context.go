package auth

import (
	"context"
	"log/slog"
)

type userContextKey struct{}

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(userContextKey{}).(*User)
	return u, ok && u != nil
}

// LoggerExtractor adds "user_id" to log records for authenticated requests.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if u, ok := UserFromContext(ctx); ok {
			return slog.String("user_id", u.ID), true
		}
		return slog.Attr{}, false
	}
}
