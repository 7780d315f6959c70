package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Authenticator verifies the caller of a request and enforces an optional
// role allow-list.
type Authenticator interface {
	Authenticate(r *http.Request, allowed ...Role) (*User, error)
}

// Config holds session token settings.
type Config struct {
	SigningKey string        `env:"AUTH_SIGNING_KEY,required"`
	Issuer     string        `env:"AUTH_ISSUER" envDefault:"tenantguard"`
	CookieName string        `env:"AUTH_COOKIE_NAME" envDefault:"session"`
	TokenTTL   time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"24h"`
}

// Claims is the session token payload.
type Claims struct {
	Role      Role         `json:"role"`
	EmpresaID string       `json:"empresa_id,omitempty"`
	IsAdmin   bool         `json:"is_admin,omitempty"`
	Metadata  UserMetadata `json:"user_metadata,omitzero"`
	jwt.RegisteredClaims
}

type UserMetadata struct {
	EmpresaID string `json:"empresa_id,omitempty"`
}

// TokenExtractor pulls a raw token out of a request.
type TokenExtractor func(r *http.Request) (string, error)

// BearerToken reads "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrTokenMissing
	}
	return strings.TrimSpace(token), nil
}

// CookieToken reads the token from the named cookie.
func CookieToken(name string) TokenExtractor {
	return func(r *http.Request) (string, error) {
		c, err := r.Cookie(name)
		if err != nil || c.Value == "" {
			return "", ErrTokenMissing
		}
		return c.Value, nil
	}
}

// TokenAuthenticator verifies HS256 session tokens.
type TokenAuthenticator struct {
	key        []byte
	issuer     string
	extractors []TokenExtractor
	parser     *jwt.Parser
}

// NewTokenAuthenticator reads tokens from the bearer header first and the
// session cookie second.
func NewTokenAuthenticator(cfg Config) (*TokenAuthenticator, error) {
	if cfg.SigningKey == "" {
		return nil, ErrMissingSigningKey
	}
	cookie := cfg.CookieName
	if cookie == "" {
		cookie = "session"
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &TokenAuthenticator{
		key:        []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		extractors: []TokenExtractor{BearerToken, CookieToken(cookie)},
		parser:     jwt.NewParser(opts...),
	}, nil
}

// Authenticate verifies the request token. Missing or invalid tokens yield
// errors wrapping ErrUnauthenticated; a role outside allowed yields
// ErrRoleNotAllowed.
func (a *TokenAuthenticator) Authenticate(r *http.Request, allowed ...Role) (*User, error) {
	raw, err := a.extract(r)
	if err != nil {
		return nil, err
	}
	u, err := a.Verify(raw)
	if err != nil {
		return nil, err
	}
	if !u.HasRole(allowed...) {
		return nil, fmt.Errorf("%w: %s", ErrRoleNotAllowed, u.Role)
	}
	return u, nil
}

// Verify parses a raw token into a User.
func (a *TokenAuthenticator) Verify(raw string) (*User, error) {
	var claims Claims
	_, err := a.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, ErrTokenInvalid
	}
	return &User{
		ID:               claims.Subject,
		Role:             claims.Role,
		TenantID:         claims.EmpresaID,
		IsTenantAdmin:    claims.IsAdmin,
		MetadataTenantID: claims.Metadata.EmpresaID,
	}, nil
}

func (a *TokenAuthenticator) extract(r *http.Request) (string, error) {
	for _, ex := range a.extractors {
		if raw, err := ex(r); err == nil {
			return raw, nil
		}
	}
	return "", ErrTokenMissing
}

// TokenIssuer mints session tokens. Used by the admin CLI and tests; the
// production identity provider issues its own.
type TokenIssuer struct {
	key    []byte
	issuer string
	now    func() time.Time
}

func NewTokenIssuer(cfg Config) (*TokenIssuer, error) {
	if cfg.SigningKey == "" {
		return nil, ErrMissingSigningKey
	}
	return &TokenIssuer{key: []byte(cfg.SigningKey), issuer: cfg.Issuer, now: time.Now}, nil
}

// Issue signs a token for u valid for ttl.
func (i *TokenIssuer) Issue(u User, ttl time.Duration) (string, error) {
	if u.ID == "" {
		return "", ErrMissingSubject
	}
	if !u.Role.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, u.Role)
	}
	now := i.now()
	claims := Claims{
		Role:      u.Role,
		EmpresaID: u.TenantID,
		IsAdmin:   u.IsTenantAdmin,
		Metadata:  UserMetadata{EmpresaID: u.MetadataTenantID},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}
