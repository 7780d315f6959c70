package tenant_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

func TestPathSegment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		position int
		path     string
		want     string
	}{
		{"first segment", 1, "/acme/dashboard", "acme"},
		{"trailing slash", 1, "/acme/", "acme"},
		{"second segment", 2, "/t/acme/x", "acme"},
		{"root", 1, "/", ""},
		{"out of range", 3, "/acme", ""},
		{"invalid position", 0, "/acme", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.want, tenant.PathSegment(tt.position)(req))
		})
	}
}

func TestSubdomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		suffix string
		host   string
		want   string
	}{
		{"subdomain", ".example.com", "acme.example.com", "acme"},
		{"with port", "example.com", "acme.example.com:8080", "acme"},
		{"www prefix", ".example.com", "www.acme.example.com", "acme"},
		{"bare www", ".example.com", "www.example.com", ""},
		{"apex", ".example.com", "example.com", ""},
		{"other domain", ".example.com", "acme.other.com", ""},
		{"uppercase", ".example.com", "ACME.Example.com", "acme"},
		{"empty suffix", "", "acme.example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			assert.Equal(t, tt.want, tenant.Subdomain(tt.suffix)(req))
		})
	}
}

func TestFirstOf(t *testing.T) {
	t.Parallel()

	ex := tenant.FirstOf(nil, tenant.Subdomain(".example.com"), tenant.PathSegment(1))

	req := httptest.NewRequest(http.MethodGet, "/beta/x", nil)
	req.Host = "acme.example.com"
	assert.Equal(t, "acme", ex(req))

	req = httptest.NewRequest(http.MethodGet, "/beta/x", nil)
	req.Host = "example.com"
	assert.Equal(t, "beta", ex(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "example.com"
	assert.Empty(t, ex(req))
}
