package pg

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/singleflight"
)

// Provider hands out a single pool, connecting on first use.
// A failed connect is not remembered; the next call tries again.
// Concurrent first calls share one connect attempt, and each caller stops
// waiting when its own context ends.
type Provider struct {
	cfg     Config
	mu      sync.Mutex
	pool    *pgxpool.Pool
	connect singleflight.Group
}

// NewProvider returns a provider that connects lazily with cfg.
func NewProvider(cfg Config) *Provider {
	return &Provider{cfg: cfg}
}

// NewProviderWithPool wraps an already connected pool.
func NewProviderWithPool(pool *pgxpool.Pool) *Provider {
	return &Provider{pool: pool}
}

// Pool returns the shared pool, connecting if needed. The connect runs
// detached from ctx so an abandoned caller does not fail the others.
func (p *Provider) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	if pool := p.current(); pool != nil {
		return pool, nil
	}

	ch := p.connect.DoChan("pool", func() (any, error) {
		if pool := p.current(); pool != nil {
			return pool, nil
		}
		pool, err := Connect(context.WithoutCancel(ctx), p.cfg)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		p.pool = pool
		return pool, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*pgxpool.Pool), nil
	}
}

func (p *Provider) current() *pgxpool.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pool
}

// Reset closes the current pool, if any. The next Pool call reconnects.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
}

// Close releases the pool.
func (p *Provider) Close() {
	p.Reset()
}
