// Package auth keeps the bearer token used by the API client and reads the
// claims the server embeds in it.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credentials is a concurrency-safe holder for the current access token.
// It satisfies itemgate.TokenSource.
type Credentials struct {
	mu    sync.RWMutex
	token string
}

// NewCredentials returns credentials seeded with token (which may be empty).
func NewCredentials(token string) *Credentials {
	return &Credentials{token: strings.TrimSpace(token)}
}

// Token returns the current token, or "" when logged out.
func (c *Credentials) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Set stores a fresh token after login.
func (c *Credentials) Set(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

// Invalidate forgets the token. Called on logout and on any 401.
func (c *Credentials) Invalidate() {
	c.Set("")
}

// Present reports whether a token is held.
func (c *Credentials) Present() bool {
	return c.Token() != ""
}

// DropExpired forgets the token when its exp claim is at or before now and
// reports whether it did. Opaque tokens are kept; the server decides.
func (c *Credentials) DropExpired(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	claims, err := ParseClaims(c.token)
	if err != nil || !claims.Expired(now) {
		return false
	}
	c.token = ""
	return true
}

// Claims are the fields of interest in an access token.
type Claims struct {
	jwt.RegisteredClaims
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
}

// ErrNoToken is returned when claims are requested without a token.
var ErrNoToken = errors.New("no token")

// ParseClaims decodes token without verifying its signature. The client has
// no signing key; the claims only drive display and early expiry detection.
func ParseClaims(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoToken
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return claims, nil
}

// Expired reports whether the claims carry an expiry at or before now.
// Tokens without exp never expire client-side.
func (c *Claims) Expired(now time.Time) bool {
	if c == nil || c.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.ExpiresAt.Time)
}

// IsAdmin reports whether the token grants the admin role.
func (c *Claims) IsAdmin() bool {
	return c != nil && strings.EqualFold(strings.TrimSpace(c.Role), "admin")
}
