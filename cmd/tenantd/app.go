package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"github.com/dmitrymomot/tenantguard/modules/portal"
	"github.com/dmitrymomot/tenantguard/pkg/access"
	"github.com/dmitrymomot/tenantguard/pkg/audit"
	"github.com/dmitrymomot/tenantguard/pkg/auth"
	"github.com/dmitrymomot/tenantguard/pkg/clientip"
	"github.com/dmitrymomot/tenantguard/pkg/guard"
	"github.com/dmitrymomot/tenantguard/pkg/httpserver"
	"github.com/dmitrymomot/tenantguard/pkg/logger"
	"github.com/dmitrymomot/tenantguard/pkg/pg"
	"github.com/dmitrymomot/tenantguard/pkg/ratelimiter"
	"github.com/dmitrymomot/tenantguard/pkg/redis"
	"github.com/dmitrymomot/tenantguard/pkg/requestid"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
	"github.com/dmitrymomot/tenantguard/svc/store"
)

var errRedisRequired = errors.New("TENANT_CACHE_BACKEND=redis needs REDIS_URL")

// app is everything the server needs, with the closers to release it.
type app struct {
	handler http.Handler
	closers []httpserver.Option
}

func newApp(ctx context.Context, cfg appConfig, log *slog.Logger) (*app, error) {
	a := &app{}

	db := pg.NewProvider(cfg.PG)
	a.closers = append(a.closers, httpserver.WithCloser("postgres", func(context.Context) error {
		db.Close()
		return nil
	}))
	checks := []httpserver.Check{{Name: "postgres", Fn: pg.Healthcheck(db)}}

	if cfg.AutoMigrate {
		pool, err := db.Pool(ctx)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
			return nil, err
		}
	}

	var rdb *goredis.Client
	if cfg.Redis.Enabled() {
		var err error
		if rdb, err = redis.Connect(ctx, cfg.Redis); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, httpserver.WithCloser("redis", func(context.Context) error {
			return rdb.Close()
		}))
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(rdb)})
	}

	records := store.New(db)

	resolverOpts := []tenant.ResolverOption{
		tenant.WithLogger(log),
		tenant.WithMeterProvider(otel.GetMeterProvider()),
	}
	cache, closeCache, err := newTenantCache(cfg.Cache, rdb, log)
	if err != nil {
		return nil, err
	}
	if closeCache != nil {
		a.closers = append(a.closers, httpserver.WithCloser("tenant_cache", func(context.Context) error {
			closeCache()
			return nil
		}))
	}
	if cache != nil {
		resolverOpts = append(resolverOpts, tenant.WithCache(cache, cfg.Cache.TTL))
	}
	resolver := tenant.NewResolver(records, resolverOpts...)

	authn, err := auth.NewTokenAuthenticator(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("session tokens: %w", err)
	}

	monitor, closeMonitor, err := newMismatchMonitor(cfg.Monitor, rdb, records, log)
	if err != nil {
		return nil, err
	}
	if closeMonitor != nil {
		a.closers = append(a.closers, httpserver.WithCloser("mismatch_counter", func(context.Context) error {
			closeMonitor()
			return nil
		}))
	}

	extractor := access.NewExtractor(records, access.WithLogger(log))
	g := guard.New(authn, resolver,
		guard.WithExtractor(extractor),
		guard.WithMonitor(monitor),
		guard.WithLogger(log),
		guard.WithAuthPath(cfg.AuthPath),
	)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware(cfg.ClientIP))
	r.Use(middleware.Recoverer)
	r.Use(tenant.HeaderMiddleware(resolver, tenant.PathSegment(1),
		tenant.WithSkipPrefixes(portal.SkipPrefixes...),
		tenant.WithMiddlewareLogger(log),
	))
	r.Mount("/", portal.Router(portal.RouterOptions{
		Guard:        g,
		Authn:        authn,
		Extractor:    extractor,
		Log:          log,
		Checks:       checks,
		ReadyTimeout: cfg.ReadyTimeout,
	}))

	a.handler = otelhttp.NewHandler(r, "tenantd")
	return a, nil
}

// newTenantCache picks the resolver cache backend. A nil Cache means
// caching is off.
func newTenantCache(cfg tenant.CacheConfig, rdb *goredis.Client, log *slog.Logger) (tenant.Cache, func(), error) {
	if !cfg.Enabled() {
		return nil, nil, nil
	}
	switch cfg.Backend {
	case tenant.CacheBackendMemory:
		c, err := tenant.NewRistrettoCache(cfg.MaxCost)
		if err != nil {
			return nil, nil, fmt.Errorf("tenant cache: %w", err)
		}
		return c, c.Close, nil
	case tenant.CacheBackendRedis:
		if rdb == nil {
			return nil, nil, errRedisRequired
		}
		return tenant.NewRedisCache(rdb, log), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown tenant cache backend %q", cfg.Backend)
	}
}

// newMismatchMonitor counts mismatches in Redis when it is available so
// every replica shares the window, and in memory otherwise.
func newMismatchMonitor(cfg guard.MonitorConfig, rdb *goredis.Client, events audit.Storage, log *slog.Logger) (*guard.AuditMonitor, func(), error) {
	var (
		counters ratelimiter.Store
		closeFn  func()
	)
	if rdb != nil {
		counters = ratelimiter.NewRedisStore(rdb, "tenantguard:mismatch")
	} else {
		mem := ratelimiter.NewMemoryStore()
		counters, closeFn = mem, mem.Close
	}

	bucket, err := ratelimiter.NewBucket(counters, cfg.BucketConfig())
	if err != nil {
		if closeFn != nil {
			closeFn()
		}
		return nil, nil, fmt.Errorf("mismatch monitor: %w", err)
	}

	auditLog := audit.NewLogger(events,
		audit.WithTenantIDExtractor(tenant.IDFromContext),
		audit.WithUserIDExtractor(userIDFromContext),
		audit.WithRequestIDExtractor(requestIDFromContext),
	)
	return guard.NewAuditMonitor(bucket, auditLog, log), closeFn, nil
}

func userIDFromContext(ctx context.Context) (string, bool) {
	u, ok := auth.UserFromContext(ctx)
	if !ok {
		return "", false
	}
	return u.ID, true
}

func requestIDFromContext(ctx context.Context) (string, bool) {
	id := requestid.FromContext(ctx)
	return id, id != ""
}

func newLogger(cfg appConfig) *slog.Logger {
	opts := []logger.Option{
		logger.WithEnvironment(cfg.Env, "tenantd"),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			clientip.LoggerExtractor(),
			tenant.LoggerExtractor(),
			auth.LoggerExtractor(),
		),
	}
	if cfg.LogLevel != "" {
		opts = append(opts, logger.WithLevelName(cfg.LogLevel))
	}
	return logger.New(opts...)
}
