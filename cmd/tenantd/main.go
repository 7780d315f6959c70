// Command tenantd serves the tenant-scoped portal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/tenantguard/pkg/config"
	"github.com/dmitrymomot/tenantguard/pkg/httpserver"
	"github.com/dmitrymomot/tenantguard/pkg/logger"
)

func main() {
	cfg, err := config.Load[appConfig](config.WithOptionalEnvFiles(".env"))
	if err != nil {
		logger.New().Error("failed to load config", logger.Error(err))
		os.Exit(1)
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("failed to start", logger.Error(err))
		os.Exit(1)
	}

	opts := append([]httpserver.Option{httpserver.WithLogger(log)}, a.closers...)
	if err := httpserver.NewFromConfig(cfg.HTTP, opts...).Run(ctx, a.handler); err != nil {
		log.Error("server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}
