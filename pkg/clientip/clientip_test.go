package clientip_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/tenantguard/pkg/clientip"
)

func TestFromRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		trusted []string
		want    string
	}{
		{name: "remote addr", remote: "203.0.113.7:5123", want: "203.0.113.7"},
		{name: "remote ipv6", remote: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "mapped ipv4", remote: "[::ffff:198.51.100.2]:80", want: "198.51.100.2"},
		{name: "remote without port", remote: "198.51.100.9", want: "198.51.100.9"},
		{name: "garbage remote", remote: "not-an-ip", want: ""},
		{
			name:    "untrusted header ignored",
			remote:  "10.0.0.1:1",
			headers: map[string]string{"X-Forwarded-For": "1.2.3.4"},
			want:    "10.0.0.1",
		},
		{
			name:    "first valid forwarded entry",
			remote:  "10.0.0.1:1",
			headers: map[string]string{"X-Forwarded-For": "junk, 1.2.3.4, 5.6.7.8"},
			trusted: []string{"X-Forwarded-For"},
			want:    "1.2.3.4",
		},
		{
			name:   "priority order",
			remote: "10.0.0.1:1",
			headers: map[string]string{
				"X-Forwarded-For":  "1.2.3.4",
				"CF-Connecting-IP": "9.9.9.9",
			},
			trusted: []string{"CF-Connecting-IP", "X-Forwarded-For"},
			want:    "9.9.9.9",
		},
		{
			name:    "invalid trusted header falls through",
			remote:  "10.0.0.1:1",
			headers: map[string]string{"X-Real-IP": "localhost"},
			trusted: []string{"X-Real-IP"},
			want:    "10.0.0.1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientip.FromRequest(r, tt.trusted...))
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var got string
	h := clientip.Middleware(clientip.Config{TrustedHeaders: []string{"X-Real-IP"}})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = clientip.FromContext(r.Context())
		}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Real-IP", "192.0.2.44")
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.Equal(t, "192.0.2.44", got)
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	_, ok := clientip.LoggerExtractor()(context.Background())
	assert.False(t, ok)

	attr, ok := clientip.LoggerExtractor()(clientip.WithContext(context.Background(), "192.0.2.1"))
	assert.True(t, ok)
	assert.Equal(t, "client_ip", attr.Key)
	assert.Equal(t, "192.0.2.1", attr.Value.String())
}
