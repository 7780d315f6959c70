// Package slug produces and validates tenant URL slugs.
//
// A tenant slug is a DNS label: lowercase ASCII letters, digits and hyphens,
// starting with a letter or digit, at most 63 characters. The same string
// is usable as a path segment ("/acme/dashboard") and as a subdomain
// ("acme.example.com").
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength is the longest slug accepted, matching the DNS label limit.
const MaxLength = 63

var pattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// Normalize trims surrounding whitespace and lowercases s. It does not
// validate the result.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Valid reports whether s is an already-normalized tenant slug.
func Valid(s string) bool {
	if s == "" || len(s) > MaxLength {
		return false
	}
	return pattern.MatchString(s)
}

// Make derives a slug from a human-readable tenant name.
// Diacritics are folded ("Escola São José" becomes "escola-sao-jose"),
// runs of other characters collapse into a single hyphen, and the result is
// cut to MaxLength without a trailing hyphen. Returns an empty string if
// nothing usable remains.
func Make(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	out := b.String()
	if len(out) > MaxLength {
		out = strings.TrimRight(out[:MaxLength], "-")
	}
	return out
}
