// Package audit records security-relevant events.
//
// A Logger stamps each event with an id, timestamp and the tenant, user and
// request id found in the context, then hands it to a Storage. Postgres
// storage lives in svc/store; SlogStorage writes events to a structured
// logger for deployments without a database sink.
//
//	l := audit.NewLogger(storage,
//		audit.WithTenantIDExtractor(tenant.IDFromContext),
//		audit.WithRequestIDExtractor(requestIDFromContext),
//	)
//	_ = l.Log(ctx, "tenant.mismatch.repeated",
//		audit.WithResource("tenant", requestedID),
//		audit.WithMetadata("count", n),
//	)
package audit
