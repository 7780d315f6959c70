package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Extractor reads an identifier from the context.
type Extractor func(context.Context) (string, bool)

// Logger builds events and stores them.
type Logger struct {
	storage   Storage
	tenantID  Extractor
	userID    Extractor
	requestID Extractor
	now       func() time.Time
}

type Option func(*Logger)

func WithTenantIDExtractor(fn Extractor) Option {
	return func(l *Logger) { l.tenantID = fn }
}

func WithUserIDExtractor(fn Extractor) Option {
	return func(l *Logger) { l.userID = fn }
}

func WithRequestIDExtractor(fn Extractor) Option {
	return func(l *Logger) { l.requestID = fn }
}

func NewLogger(storage Storage, opts ...Option) *Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}
	l := &Logger{storage: storage, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Log records a successful action unless an option says otherwise.
func (l *Logger) Log(ctx context.Context, action string, opts ...EventOption) error {
	e := l.newEvent(ctx, action, ResultSuccess)
	for _, opt := range opts {
		opt(&e)
	}
	return l.store(ctx, e)
}

// LogError records a failed action with the error message.
func (l *Logger) LogError(ctx context.Context, action string, err error, opts ...EventOption) error {
	e := l.newEvent(ctx, action, ResultError)
	if err != nil {
		e.Error = err.Error()
	}
	for _, opt := range opts {
		opt(&e)
	}
	return l.store(ctx, e)
}

func (l *Logger) store(ctx context.Context, e Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	return l.storage.Store(ctx, e)
}

func (l *Logger) newEvent(ctx context.Context, action string, result Result) Event {
	e := Event{
		ID:        uuid.NewString(),
		Action:    action,
		Result:    result,
		CreatedAt: l.now().UTC(),
	}
	e.TenantID = extract(ctx, l.tenantID)
	e.UserID = extract(ctx, l.userID)
	e.RequestID = extract(ctx, l.requestID)
	return e
}

func extract(ctx context.Context, fn Extractor) string {
	if fn == nil {
		return ""
	}
	v, _ := fn(ctx)
	return v
}
