package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/tenantguard/pkg/audit"
)

// Store writes audit events in one batch.
func (s *Store) Store(ctx context.Context, events ...audit.Event) error {
	if len(events) == 0 {
		return nil
	}
	db, err := s.conn(ctx)
	if err != nil {
		return errors.Join(audit.ErrStorageNotAvailable, err)
	}

	batch := &pgx.Batch{}
	for _, e := range events {
		var meta []byte
		if len(e.Metadata) > 0 {
			if meta, err = json.Marshal(e.Metadata); err != nil {
				return fmt.Errorf("encode audit metadata: %w", err)
			}
		}
		batch.Queue(
			`INSERT INTO audit_events
			   (id, tenant_id, user_id, action, resource, resource_id, result, error, request_id, metadata, created_at)
			 VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), $7, NULLIF($8, ''), NULLIF($9, ''), $10, $11)`,
			e.ID, e.TenantID, e.UserID, e.Action, e.Resource, e.ResourceID,
			string(e.Result), e.Error, e.RequestID, meta, e.CreatedAt,
		)
	}

	br := db.SendBatch(ctx, batch)
	for range events {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("store audit event: %w", err)
		}
	}
	return br.Close()
}

// AuditEvents returns the newest events of a tenant, newest first.
func (s *Store) AuditEvents(ctx context.Context, tenantID string, limit int) ([]audit.Event, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(ctx,
		`SELECT id::text, COALESCE(tenant_id, ''), COALESCE(user_id, ''), action,
		        COALESCE(resource, ''), COALESCE(resource_id, ''), result,
		        COALESCE(error, ''), COALESCE(request_id, ''), metadata, created_at
		 FROM audit_events
		 WHERE tenant_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, tenantID, max(limit, 1))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var (
			e      audit.Event
			result string
			meta   []byte
		)
		if err := rows.Scan(&e.ID, &e.TenantID, &e.UserID, &e.Action, &e.Resource, &e.ResourceID,
			&result, &e.Error, &e.RequestID, &meta, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Result = audit.Result(result)
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, fmt.Errorf("decode audit metadata: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
