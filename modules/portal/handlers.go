package portal

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/tenantguard/core"
	"github.com/dmitrymomot/tenantguard/pkg/access"
	"github.com/dmitrymomot/tenantguard/pkg/auth"
	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

type handlers struct {
	extractor *access.Extractor
	log       *slog.Logger
}

// TenantView is the public shape of a tenant.
type TenantView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Subdomain string `json:"subdomain,omitempty"`
}

func viewOf(t tenant.Tenant) TenantView {
	return TenantView{ID: t.ID, Name: t.Name, Slug: t.Slug, Subdomain: t.Subdomain}
}

// PageView is what a tenant page renders.
type PageView struct {
	Tenant TenantView `json:"tenant"`
	UserID string     `json:"user_id"`
	Role   auth.Role  `json:"role"`
	Path   string     `json:"path"`
}

func (h *handlers) authPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Sign in to continue.\n"))
}

func (h *handlers) tenantPage(w http.ResponseWriter, r *http.Request) {
	t, _ := tenant.FromContext(r.Context())
	u, _ := auth.UserFromContext(r.Context())
	core.Render(w, r, core.JSON(PageView{
		Tenant: viewOf(t),
		UserID: u.ID,
		Role:   u.Role,
		Path:   "/" + chi.URLParam(r, "*"),
	}), h.log)
}

func (h *handlers) tenantInfo(w http.ResponseWriter, r *http.Request) {
	t, _ := tenant.FromContext(r.Context())
	core.Render(w, r, core.JSON(viewOf(t)), h.log)
}

func (h *handlers) callerContext(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	c := h.extractor.GetContext(r.Context(), r, u)
	core.Render(w, r, core.JSON(c), h.log)
}

func (h *handlers) accessGranted(w http.ResponseWriter, r *http.Request) {
	core.Render(w, r, core.NoContent(), h.log)
}
