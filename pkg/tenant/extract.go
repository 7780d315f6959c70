package tenant

import (
	"net"
	"net/http"
	"strings"
)

// SlugExtractor pulls a candidate tenant slug out of a request.
// It returns an empty string when the request carries none.
type SlugExtractor func(r *http.Request) string

// PathSegment extracts the slug from the 1-based path position,
// e.g. PathSegment(1) yields "acme" for "/acme/dashboard".
func PathSegment(position int) SlugExtractor {
	return func(r *http.Request) string {
		if position < 1 {
			return ""
		}
		path := strings.Trim(r.URL.Path, "/")
		if path == "" {
			return ""
		}
		parts := strings.Split(path, "/")
		if position > len(parts) {
			return ""
		}
		return parts[position-1]
	}
}

// Subdomain extracts the label directly in front of suffix, e.g.
// Subdomain(".example.com") yields "acme" for "acme.example.com:8080" and
// "www.acme.example.com". The bare suffix host and "www" yield nothing.
func Subdomain(suffix string) SlugExtractor {
	suffix = "." + strings.Trim(strings.ToLower(suffix), ".")
	return func(r *http.Request) string {
		host := strings.ToLower(r.Host)
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if suffix == "." || !strings.HasSuffix(host, suffix) {
			return ""
		}
		labels := strings.Split(strings.TrimSuffix(host, suffix), ".")
		sub := labels[len(labels)-1]
		if sub == "www" {
			return ""
		}
		return sub
	}
}

// FirstOf returns the first non-empty slug produced by extractors.
func FirstOf(extractors ...SlugExtractor) SlugExtractor {
	return func(r *http.Request) string {
		for _, ex := range extractors {
			if ex == nil {
				continue
			}
			if s := ex(r); s != "" {
				return s
			}
		}
		return ""
	}
}
