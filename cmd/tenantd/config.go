package main

import (
	"time"

	"github.com/dmitrymomot/tenantguard/pkg/auth"
	"github.com/dmitrymomot/tenantguard/pkg/clientip"
	"github.com/dmitrymomot/tenantguard/pkg/guard"
	"github.com/dmitrymomot/tenantguard/pkg/httpserver"
	"github.com/dmitrymomot/tenantguard/pkg/pg"
	"github.com/dmitrymomot/tenantguard/pkg/redis"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

type appConfig struct {
	Env          string        `env:"APP_ENV" envDefault:"development"`
	LogLevel     string        `env:"LOG_LEVEL"`
	AutoMigrate  bool          `env:"PG_AUTO_MIGRATE" envDefault:"false"`
	AuthPath     string        `env:"GUARD_AUTH_PATH" envDefault:"/auth"`
	ReadyTimeout time.Duration `env:"HTTP_READY_TIMEOUT" envDefault:"2s"`

	HTTP     httpserver.Config
	ClientIP clientip.Config
	PG       pg.Config
	Redis    redis.Config
	Cache    tenant.CacheConfig
	Auth     auth.Config
	Monitor  guard.MonitorConfig
}
