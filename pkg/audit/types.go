package audit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrEventValidation     = errors.New("event validation failed")
	ErrStorageNotAvailable = errors.New("storage backend is unavailable")
)

// Result is the outcome of an audited action.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
	ResultError   Result = "error"
)

// Event is a single audit entry.
type Event struct {
	ID         string         `json:"id"`
	TenantID   string         `json:"tenant_id,omitempty"`
	UserID     string         `json:"user_id,omitempty"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource,omitempty"`
	ResourceID string         `json:"resource_id,omitempty"`
	Result     Result         `json:"result"`
	Error      string         `json:"error,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (e *Event) Validate() error {
	if e.Action == "" {
		return fmt.Errorf("%w: action is required", ErrEventValidation)
	}
	return nil
}

// Storage persists events.
type Storage interface {
	Store(ctx context.Context, events ...Event) error
}

// StorageFunc adapts a function to Storage.
type StorageFunc func(ctx context.Context, events ...Event) error

func (f StorageFunc) Store(ctx context.Context, events ...Event) error {
	return f(ctx, events...)
}

type EventOption func(*Event)

func WithResource(resource, id string) EventOption {
	return func(e *Event) {
		e.Resource = resource
		e.ResourceID = id
	}
}

func WithMetadata(key string, value any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}

func WithResult(r Result) EventOption {
	return func(e *Event) { e.Result = r }
}

// WithUserID overrides the user id taken from the context.
func WithUserID(id string) EventOption {
	return func(e *Event) { e.UserID = id }
}

// WithTenantID overrides the tenant id taken from the context.
func WithTenantID(id string) EventOption {
	return func(e *Event) { e.TenantID = id }
}
