// Package config loads env-tagged configuration structs.
//
// Values come from process environment variables, optionally seeded from
// one or more dotenv files. Struct tags follow github.com/caarlos0/env:
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	cfg, err := config.Load[Config]()
//
// Dotenv files never override variables that are already set.
package config
