package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantguard/pkg/access"
	"github.com/dmitrymomot/tenantguard/pkg/pg"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

var ErrInvalidMembership = errors.New("membership needs a user id and a tenant id")

// ActiveMembership returns the user's oldest active, not deleted membership.
func (s *Store) ActiveMembership(ctx context.Context, userID string) (*access.Membership, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	var m access.Membership
	err = db.QueryRow(ctx,
		`SELECT user_id, empresa_id::text, is_admin, active, deleted_at
		 FROM usuarios_empresas
		 WHERE user_id = $1 AND active AND deleted_at IS NULL
		 ORDER BY created_at
		 LIMIT 1`, userID,
	).Scan(&m.UserID, &m.TenantID, &m.IsAdmin, &m.Active, &m.DeletedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, access.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("find membership: %w", err)
	}
	return &m, nil
}

// AddMembership links a user to a tenant. Re-adding a removed membership
// revives it.
func (s *Store) AddMembership(ctx context.Context, m access.Membership) error {
	if m.UserID == "" || m.TenantID == "" {
		return ErrInvalidMembership
	}
	if _, err := uuid.Parse(m.TenantID); err != nil {
		return tenant.ErrTenantNotFound
	}
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx,
		`INSERT INTO usuarios_empresas (user_id, empresa_id, is_admin)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, empresa_id)
		 DO UPDATE SET is_admin = EXCLUDED.is_admin, active = TRUE, deleted_at = NULL`,
		m.UserID, m.TenantID, m.IsAdmin)
	if err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return tenant.ErrTenantNotFound
		}
		return fmt.Errorf("add membership: %w", err)
	}
	return nil
}

// RemoveMembership soft-deletes the membership.
func (s *Store) RemoveMembership(ctx context.Context, userID, tenantID string) error {
	if _, err := uuid.Parse(tenantID); err != nil {
		return access.ErrMembershipNotFound
	}
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}
	tag, err := db.Exec(ctx,
		`UPDATE usuarios_empresas SET deleted_at = now()
		 WHERE user_id = $1 AND empresa_id = $2 AND deleted_at IS NULL`,
		userID, tenantID)
	if err != nil {
		return fmt.Errorf("remove membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return access.ErrMembershipNotFound
	}
	return nil
}
