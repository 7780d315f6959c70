package audit

import (
	"context"
	"log/slog"
)

// SlogStorage writes events as structured log records at info level.
type SlogStorage struct {
	log *slog.Logger
}

func NewSlogStorage(log *slog.Logger) *SlogStorage {
	if log == nil {
		panic("audit: logger cannot be nil")
	}
	return &SlogStorage{log: log}
}

func (s *SlogStorage) Store(ctx context.Context, events ...Event) error {
	for _, e := range events {
		attrs := []slog.Attr{
			slog.String("audit_id", e.ID),
			slog.String("action", e.Action),
			slog.String("result", string(e.Result)),
			slog.Time("at", e.CreatedAt),
		}
		if e.TenantID != "" {
			attrs = append(attrs, slog.String("tenant_id", e.TenantID))
		}
		if e.UserID != "" {
			attrs = append(attrs, slog.String("user_id", e.UserID))
		}
		if e.Resource != "" {
			attrs = append(attrs, slog.String("resource", e.Resource), slog.String("resource_id", e.ResourceID))
		}
		if e.Error != "" {
			attrs = append(attrs, slog.String("error", e.Error))
		}
		if len(e.Metadata) > 0 {
			attrs = append(attrs, slog.Any("metadata", e.Metadata))
		}
		s.log.LogAttrs(ctx, slog.LevelInfo, "audit", attrs...)
	}
	return nil
}
