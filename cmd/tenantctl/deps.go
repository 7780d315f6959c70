package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/tenantguard/pkg/config"
	"github.com/dmitrymomot/tenantguard/pkg/logger"
	"github.com/dmitrymomot/tenantguard/pkg/pg"
	"github.com/dmitrymomot/tenantguard/pkg/redis"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
	"github.com/dmitrymomot/tenantguard/svc/store"
)

type ctlConfig struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"warn"`
	PG       pg.Config
	Redis    redis.Config
}

type deps struct {
	cfg   ctlConfig
	log   *slog.Logger
	db    *pg.Provider
	store *store.Store
}

func loadDeps() (*deps, error) {
	cfg, err := config.Load[ctlConfig](config.WithOptionalEnvFiles(".env"))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(logger.WithFormat(logger.FormatText), logger.WithLevelName(cfg.LogLevel))
	db := pg.NewProvider(cfg.PG)
	return &deps{cfg: cfg, log: log, db: db, store: store.New(db)}, nil
}

func (d *deps) Close() {
	d.db.Close()
}

// invalidate drops keys from the shared Redis cache so running servers stop
// serving the old state. Without Redis there is nothing shared to drop;
// in-process caches expire on their TTL.
func (d *deps) invalidate(ctx context.Context, t *tenant.Tenant) error {
	if !d.cfg.Redis.Enabled() {
		return nil
	}
	client, err := redis.Connect(ctx, d.cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer client.Close()

	resolver := tenant.NewResolver(d.store,
		tenant.WithCache(tenant.NewRedisCache(client, d.log), time.Minute),
		tenant.WithLogger(d.log),
	)
	return resolver.Invalidate(ctx, t.Slug, t.Subdomain)
}
