package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenMargin is subtracted from a token's expiry so a token is
// refreshed before it actually lapses mid-call.
const DefaultTokenMargin = 2 * time.Minute

// TokenSource obtains a fresh authentication token from the authority.
type TokenSource interface {
	FetchToken(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) FetchToken(ctx context.Context) (string, error) {
	return f(ctx)
}

// TokenCache caches an authority token with explicit expiry and refresh.
// It is injectable so tests and alternative transports can supply their
// own; there is no package-level singleton.
type TokenCache struct {
	mu     sync.Mutex
	source TokenSource
	margin time.Duration
	now    func() time.Time

	token     string
	expiresAt time.Time
}

// NewTokenCache creates a cache over the given source.
func NewTokenCache(source TokenSource, margin time.Duration) *TokenCache {
	if margin <= 0 {
		margin = DefaultTokenMargin
	}
	return &TokenCache{
		source: source,
		margin: margin,
		now:    time.Now,
	}
}

// Token returns the cached token, refreshing it when missing or within
// the expiry margin.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiresAt.Add(-c.margin)) {
		return c.token, nil
	}

	token, err := c.source.FetchToken(ctx)
	if err != nil {
		return "", err
	}

	c.token = token
	c.expiresAt = tokenExpiry(token, c.now())
	return token, nil
}

// Invalidate drops the cached token, forcing a refresh on next use.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

// tokenExpiry reads the exp claim from a JWT without verifying it (the
// authority signed it; we only need the lifetime). Tokens that do not
// parse get a conservative one-hour lifetime.
func tokenExpiry(token string, now time.Time) time.Time {
	fallback := now.Add(1 * time.Hour)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return fallback
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fallback
	}
	return exp.Time
}
