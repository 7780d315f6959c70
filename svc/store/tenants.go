package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/tenantguard/pkg/pg"
	"github.com/dmitrymomot/tenantguard/pkg/slug"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

const tenantColumns = `id::text, name, slug, COALESCE(subdomain, ''), active, created_at`

func scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	var t tenant.Tenant
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Subdomain, &t.Active, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// FindActive matches key against slug first, then subdomain.
func (s *Store) FindActive(ctx context.Context, key string) (*tenant.Tenant, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	t, err := scanTenant(db.QueryRow(ctx,
		`SELECT `+tenantColumns+`
		 FROM empresas
		 WHERE active AND (slug = $1 OR subdomain = $1)
		 ORDER BY (slug = $1) DESC
		 LIMIT 1`, key))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("find tenant %q: %w", key, err)
	}
	return t, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	// Ids are UUIDs; anything else cannot exist and would fail the cast.
	if _, err := uuid.Parse(id); err != nil {
		return nil, tenant.ErrTenantNotFound
	}
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	t, err := scanTenant(db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM empresas WHERE id = $1`, id))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("find tenant by id %s: %w", id, err)
	}
	return t, nil
}

// NewTenant is the input of CreateTenant. An empty Slug is derived from Name.
type NewTenant struct {
	Name      string `yaml:"name"`
	Slug      string `yaml:"slug"`
	Subdomain string `yaml:"subdomain"`
	Active    *bool  `yaml:"active"`
}

func (n NewTenant) normalize() (NewTenant, error) {
	n.Name = strings.TrimSpace(n.Name)
	if n.Name == "" {
		return n, ErrInvalidName
	}
	if n.Slug == "" {
		n.Slug = slug.Make(n.Name)
	} else {
		n.Slug = slug.Normalize(n.Slug)
	}
	if !slug.Valid(n.Slug) {
		return n, fmt.Errorf("%w: %q", tenant.ErrInvalidSlug, n.Slug)
	}
	if n.Subdomain != "" {
		n.Subdomain = slug.Normalize(n.Subdomain)
		if !slug.Valid(n.Subdomain) {
			return n, fmt.Errorf("%w: subdomain %q", tenant.ErrInvalidSlug, n.Subdomain)
		}
	}
	return n, nil
}

func (s *Store) CreateTenant(ctx context.Context, in NewTenant) (*tenant.Tenant, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}

	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	t, err := scanTenant(db.QueryRow(ctx,
		`INSERT INTO empresas (name, slug, subdomain, active)
		 VALUES ($1, $2, NULLIF($3, ''), $4)
		 RETURNING `+tenantColumns,
		in.Name, in.Slug, in.Subdomain, active))
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %s", ErrTenantExists, in.Slug)
		}
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	return t, nil
}

// SetTenantActive flips the active flag of the tenant with the given slug
// and returns the updated row, so callers can invalidate cached keys.
func (s *Store) SetTenantActive(ctx context.Context, tenantSlug string, active bool) (*tenant.Tenant, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	t, err := scanTenant(db.QueryRow(ctx,
		`UPDATE empresas SET active = $2, updated_at = now()
		 WHERE slug = $1
		 RETURNING `+tenantColumns,
		slug.Normalize(tenantSlug), active))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("set tenant active: %w", err)
	}
	return t, nil
}

func (s *Store) ListTenants(ctx context.Context) ([]tenant.Tenant, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx, `SELECT `+tenantColumns+` FROM empresas ORDER BY created_at, slug`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var out []tenant.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return out, nil
}
