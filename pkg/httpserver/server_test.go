package httpserver_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantguard/pkg/httpserver"
)

func runAsync(ctx context.Context, srv *httpserver.Server, h http.Handler) <-chan error {
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, h) }()
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		require.FailNow(t, "run did not finish")
		return nil
	}
}

func TestRunAndShutdown(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithShutdownTimeout(time.Second),
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := runAsync(ctx, srv, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	<-srv.Started()

	resp, err := http.Get("http://" + srv.Addr())
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	cancel()
	require.NoError(t, waitDone(t, done))
	assert.NoError(t, srv.Shutdown(context.Background()))
}

func TestStartError(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithAddr("127.0.0.1:-1"))
	err := srv.Run(context.Background(), http.NotFoundHandler())
	assert.ErrorIs(t, err, httpserver.ErrStart)
}

func TestAlreadyRunning(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.WithAddr("127.0.0.1:0"))
	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, srv, http.NotFoundHandler())
	<-srv.Started()

	err := srv.Run(context.Background(), http.NotFoundHandler())
	assert.ErrorIs(t, err, httpserver.ErrAlreadyRunning)

	cancel()
	require.NoError(t, waitDone(t, done))
}

func TestClosersRunInReverse(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) func(context.Context) error {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}

	srv := httpserver.New(
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithCloser("postgres", record("postgres")),
		httpserver.WithCloser("redis", record("redis")),
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, srv, http.NotFoundHandler())
	<-srv.Started()
	cancel()
	require.NoError(t, waitDone(t, done))

	// Shutdown after Run returned must not run closers again.
	require.NoError(t, srv.Shutdown(context.Background()))
	assert.Equal(t, []string{"redis", "postgres"}, order)
}

func TestCloserErrorIsReported(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	srv := httpserver.New(
		httpserver.WithAddr("127.0.0.1:0"),
		httpserver.WithCloser("broken", func(context.Context) error { return boom }),
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, srv, http.NotFoundHandler())
	<-srv.Started()
	cancel()

	err := waitDone(t, done)
	assert.ErrorIs(t, err, httpserver.ErrShutdown)
	assert.ErrorIs(t, err, boom)
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	srv := httpserver.NewFromConfig(httpserver.Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, srv, http.NotFoundHandler())
	<-srv.Started()
	assert.NotEmpty(t, srv.Addr())
	cancel()
	require.NoError(t, waitDone(t, done))
}

func TestLiveness(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	httpserver.Liveness()(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"status":"alive"}}`, w.Body.String())
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	ok := httpserver.Check{Name: "postgres", Fn: func(context.Context) error { return nil }}
	failing := httpserver.Check{Name: "redis", Fn: func(context.Context) error { return errors.New("dial tcp: refused") }}

	t.Run("all healthy", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		httpserver.Readiness(nil, time.Second, ok)(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":{"status":"ready","checks":{"postgres":"ok"}}}`, w.Body.String())
	})

	t.Run("one failing", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		httpserver.Readiness(nil, time.Second, ok, failing)(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"data":{"status":"not_ready","checks":{"postgres":"ok","redis":"fail"}}}`, w.Body.String())
		assert.NotContains(t, w.Body.String(), "refused")
	})

	t.Run("checks see the deadline", func(t *testing.T) {
		t.Parallel()

		slow := httpserver.Check{Name: "slow", Fn: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}}
		w := httptest.NewRecorder()
		httpserver.Readiness(nil, 20*time.Millisecond, slow)(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
