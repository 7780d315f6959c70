package pg

import (
	"context"
	"errors"
)

// Healthcheck returns a readiness probe backed by the provider's pool.
// A provider that cannot connect is reported unhealthy.
func Healthcheck(p *Provider) func(context.Context) error {
	return func(ctx context.Context) error {
		pool, err := p.Pool(ctx)
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
