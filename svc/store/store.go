package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/tenantguard/pkg/access"
	"github.com/dmitrymomot/tenantguard/pkg/audit"
	"github.com/dmitrymomot/tenantguard/pkg/pg"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

var (
	ErrTenantExists = errors.New("tenant slug or subdomain already taken")
	ErrInvalidName  = errors.New("tenant name is required")
)

var (
	_ tenant.Store           = (*Store)(nil)
	_ access.MembershipStore = (*Store)(nil)
	_ audit.Storage          = (*Store)(nil)
)

// querier is the part of *pgxpool.Pool the store uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type Store struct {
	db *pg.Provider
}

func New(db *pg.Provider) *Store {
	if db == nil {
		panic("store: pg provider cannot be nil")
	}
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) (querier, error) {
	return s.db.Pool(ctx)
}
