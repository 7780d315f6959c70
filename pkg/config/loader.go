package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type options struct {
	files    []string
	required bool
	prefix   string
}

// Option configures Load.
type Option func(*options)

// WithEnvFiles loads the given dotenv files before parsing. Missing files
// are an error; use WithOptionalEnvFiles for best-effort loading.
func WithEnvFiles(files ...string) Option {
	return func(o *options) {
		o.files = append(o.files, files...)
		o.required = true
	}
}

// WithOptionalEnvFiles loads the given dotenv files if they exist.
func WithOptionalEnvFiles(files ...string) Option {
	return func(o *options) {
		o.files = append(o.files, files...)
	}
}

// WithPrefix requires every variable name to carry the prefix, e.g. "TENANTD_".
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// Load parses environment variables into a new value of T.
// Without options it reads ".env" from the working directory when present.
func Load[T any](opts ...Option) (T, error) {
	var cfg T

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if len(o.files) == 0 {
		o.files = []string{".env"}
	}

	for _, f := range o.files {
		if err := godotenv.Load(f); err != nil {
			if !o.required && errors.Is(err, os.ErrNotExist) {
				continue
			}
			return cfg, errors.Join(ErrLoadingEnvFile, fmt.Errorf("%s: %w", f, err))
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: o.prefix}); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}

	return cfg, nil
}

// MustLoad works like Load but panics on failure. Intended for main packages
// where a missing required variable should stop startup.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
	return cfg
}
