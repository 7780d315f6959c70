// Package logger builds slog loggers for tenantguard services.
//
// Loggers are configured with functional options and wrap the stdlib JSON or
// text handler in a decorator that pulls request-scoped attributes (request
// id, tenant id, user id) out of the context at log time:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "tenantd"),
//		logger.WithContextExtractors(
//			requestid.LoggerExtractor(),
//			tenant.LoggerExtractor(),
//			auth.LoggerExtractor(),
//		),
//	)
//	log.InfoContext(ctx, "tenant resolved", logger.TenantSlug("acme"))
//
// Production and staging environments log JSON at info level, everything
// else logs text at debug level.
package logger
