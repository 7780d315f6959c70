package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/tenantguard/pkg/logger"
)

type closer struct {
	name string
	fn   func(context.Context) error
}

type config struct {
	addr              string
	readHeaderTimeout time.Duration
	readTimeout       time.Duration
	writeTimeout      time.Duration
	idleTimeout       time.Duration
	shutdownTimeout   time.Duration
	log               *slog.Logger
	closers           []closer
}

// Server runs one http.Server until its context is cancelled.
type Server struct {
	cfg *config

	mu      sync.Mutex
	srv     *http.Server
	ln      net.Listener
	started chan struct{}
	once    sync.Once
}

func New(opts ...Option) *Server {
	cfg := &config{
		addr:            ":8080",
		shutdownTimeout: 10 * time.Second,
		log:             logger.Discard(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.log = cfg.log.With(logger.Component("http_server"))
	return &Server{cfg: cfg, started: make(chan struct{})}
}

// Started is closed once the server is accepting connections.
func (s *Server) Started() <-chan struct{} {
	return s.started
}

// Addr is the bound address, or "" before Run listens.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Run serves handler and blocks until ctx is done, then shuts down
// gracefully and runs the registered closers. Listen failures are wrapped
// with ErrStart.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	s.mu.Lock()
	if s.srv != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, ErrAlreadyRunning)
	}
	ln, err := net.Listen("tcp", s.cfg.addr)
	if err != nil {
		s.mu.Unlock()
		return errors.Join(ErrStart, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: s.cfg.readHeaderTimeout,
		ReadTimeout:       s.cfg.readTimeout,
		WriteTimeout:      s.cfg.writeTimeout,
		IdleTimeout:       s.cfg.idleTimeout,
		ErrorLog:          slog.NewLogLogger(s.cfg.log.Handler(), slog.LevelWarn),
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	s.srv, s.ln = srv, ln
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	s.cfg.log.InfoContext(ctx, "http server started", slog.String("addr", ln.Addr().String()))
	close(s.started)

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownErr := s.Shutdown(context.WithoutCancel(ctx))
	if serveErr == nil {
		serveErr = <-errCh
	}
	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return errors.Join(ErrStart, serveErr, shutdownErr)
	}
	return shutdownErr
}

// Shutdown stops the server and runs the closers. Repeated calls are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	s.once.Do(func() {
		s.mu.Lock()
		srv := s.srv
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(ctx, s.cfg.shutdownTimeout)
		defer cancel()

		if srv != nil {
			s.cfg.log.InfoContext(ctx, "http server shutting down")
			if err := srv.Shutdown(ctx); err != nil {
				errs = append(errs, errors.Join(ErrShutdown, err))
			}
		}
		for _, c := range slices.Backward(s.cfg.closers) {
			if err := c.fn(ctx); err != nil {
				s.cfg.log.ErrorContext(ctx, "closer failed", slog.String("closer", c.name), logger.Error(err))
				errs = append(errs, errors.Join(ErrShutdown, err))
			}
		}
	})
	return errors.Join(errs...)
}
