package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/tenantguard/core"
	"github.com/dmitrymomot/tenantguard/pkg/logger"
)

// Check is a named readiness probe.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

type healthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Liveness always answers 200.
func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		core.Render(w, r, core.JSON(healthStatus{Status: "alive"}), nil)
	}
}

// Readiness runs every check with a shared deadline. It answers 200 when
// all pass and 503 otherwise; failure details only go to the log.
func Readiness(log *slog.Logger, timeout time.Duration, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		res := healthStatus{Status: "ready", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for _, c := range checks {
			if err := c.Fn(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", slog.String("check", c.Name), logger.Error(err))
				res.Checks[c.Name] = "fail"
				res.Status = "not_ready"
				status = http.StatusServiceUnavailable
				continue
			}
			res.Checks[c.Name] = "ok"
		}
		core.Render(w, r, core.JSONWithStatus(status, res), log)
	}
}
