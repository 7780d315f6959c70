package guard

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/tenantguard/pkg/audit"
	"github.com/dmitrymomot/tenantguard/pkg/auth"
	"github.com/dmitrymomot/tenantguard/pkg/clientip"
	"github.com/dmitrymomot/tenantguard/pkg/logger"
	"github.com/dmitrymomot/tenantguard/pkg/ratelimiter"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

// ActionMismatchRepeated is the audit action written when a caller keeps
// hitting other tenants' URLs.
const ActionMismatchRepeated = "tenant.mismatch.repeated"

// MonitorConfig sets how many mismatches a caller may produce per window
// before an audit event is written.
type MonitorConfig struct {
	Threshold int           `env:"GUARD_MISMATCH_THRESHOLD" envDefault:"5"`
	Window    time.Duration `env:"GUARD_MISMATCH_WINDOW" envDefault:"10m"`
}

// BucketConfig maps the monitor settings onto a token bucket that refills
// completely once per window. The extra token covers the single overdraft
// the store keeps after the threshold is crossed.
func (c MonitorConfig) BucketConfig() ratelimiter.Config {
	return ratelimiter.Config{
		Capacity:       c.Threshold,
		RefillRate:     c.Threshold + 1,
		RefillInterval: c.Window,
	}
}

// AuditMonitor counts mismatches per user. Every mismatch is logged at
// debug level; the first one past the threshold in a window is written to
// the audit log.
type AuditMonitor struct {
	bucket *ratelimiter.Bucket
	audit  *audit.Logger
	log    *slog.Logger
}

// NewAuditMonitor counts mismatches in bucket and writes repeated ones to
// auditLog.
func NewAuditMonitor(bucket *ratelimiter.Bucket, auditLog *audit.Logger, log *slog.Logger) *AuditMonitor {
	if bucket == nil {
		panic("guard: rate limit bucket cannot be nil")
	}
	if auditLog == nil {
		panic("guard: audit logger cannot be nil")
	}
	if log == nil {
		log = logger.Discard()
	}
	return &AuditMonitor{bucket: bucket, audit: auditLog, log: log.With(logger.Component("mismatch_monitor"))}
}

// Mismatch records that user, whose tenant is callerTenantID, asked for
// requested. Counter and audit failures are logged and never surface.
func (m *AuditMonitor) Mismatch(ctx context.Context, user *auth.User, callerTenantID string, requested tenant.Tenant) {
	m.log.DebugContext(ctx, "tenant mismatch",
		logger.UserID(user.ID),
		logger.TenantID(callerTenantID),
		slog.String("requested_tenant_id", requested.ID),
		slog.String("requested_slug", requested.Slug),
	)

	res, err := m.bucket.Allow(ctx, "mismatch:"+user.ID)
	if err != nil {
		m.log.WarnContext(ctx, "mismatch counter unavailable", logger.Error(err))
		return
	}
	// Only the first overdraft in a window is reported.
	if res.Remaining != -1 {
		return
	}

	opts := []audit.EventOption{
		audit.WithResult(audit.ResultFailure),
		audit.WithUserID(user.ID),
		audit.WithTenantID(callerTenantID),
		audit.WithResource("tenant", requested.ID),
		audit.WithMetadata("requested_slug", requested.Slug),
		audit.WithMetadata("threshold", res.Limit),
	}
	if ip := clientip.FromContext(ctx); ip != "" {
		opts = append(opts, audit.WithMetadata("client_ip", ip))
	}
	err = m.audit.Log(ctx, ActionMismatchRepeated, opts...)
	if err != nil {
		m.log.ErrorContext(ctx, "failed to write mismatch audit event", logger.Error(err))
	}
}
