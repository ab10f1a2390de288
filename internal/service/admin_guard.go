package service

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AdminRole is the role claim carried by admin tokens.
const AdminRole = "admin"

// ErrAdminTokensDisabled is returned by Issue when no signing key is configured.
var ErrAdminTokensDisabled = errors.New("admin tokens disabled: no signing key configured")

// SecretGuard checks the shared admin secret. A bcrypt hash, when configured,
// takes precedence over the plain value. With neither configured every
// secret is rejected.
type SecretGuard struct {
	plain []byte
	hash  []byte
}

func NewSecretGuard(plain, hash string) *SecretGuard {
	g := &SecretGuard{}
	if plain != "" {
		g.plain = []byte(plain)
	}
	if hash != "" {
		g.hash = []byte(hash)
	}
	return g
}

// Configured reports whether any server-side secret is set.
func (g *SecretGuard) Configured() bool {
	return g != nil && (len(g.hash) > 0 || len(g.plain) > 0)
}

// Verify reports whether secret matches. An empty secret never matches.
func (g *SecretGuard) Verify(secret string) bool {
	if !g.Configured() || secret == "" {
		return false
	}
	if len(g.hash) > 0 {
		return bcrypt.CompareHashAndPassword(g.hash, []byte(secret)) == nil
	}
	return subtle.ConstantTimeCompare(g.plain, []byte(secret)) == 1
}

// AdminTokenIssuer signs short-lived HS256 admin tokens.
type AdminTokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewAdminTokenIssuer(key string, ttl time.Duration) *AdminTokenIssuer {
	return &AdminTokenIssuer{key: []byte(key), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (i *AdminTokenIssuer) TTL() time.Duration { return i.ttl }

// Issue returns a signed admin token.
func (i *AdminTokenIssuer) Issue() (string, error) {
	if i == nil || len(i.key) == 0 {
		return "", ErrAdminTokensDisabled
	}
	now := i.now()
	claims := jwt.MapClaims{
		"role": AdminRole,
		"jti":  uuid.NewString(),
		"iat":  now.Unix(),
		"exp":  now.Add(i.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
}
