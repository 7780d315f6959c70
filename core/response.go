// Package core holds the HTTP response primitives shared by handlers and
// middlewares: typed HTTP errors, the JSON envelope, and redirects.
package core

import (
	"log/slog"
	"net/http"
)

// Response renders itself to an http.ResponseWriter.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// Render writes resp and logs render failures. Headers may already be sent
// when rendering fails, so nothing else is written.
func Render(w http.ResponseWriter, r *http.Request, resp Response, log *slog.Logger) {
	if err := resp.Render(w, r); err != nil && log != nil {
		log.ErrorContext(r.Context(), "failed to render response", slog.Any("error", err))
	}
}

type noContent struct{}

func (noContent) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// NoContent responds with 204 and an empty body.
func NoContent() Response { return noContent{} }
