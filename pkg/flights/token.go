package flights

import (
	"context"
	"sync"
	"time"
)

// expiryMargin is subtracted from the provider-declared token lifetime so an
// about-to-expire token is never handed to a request.
const expiryMargin = 60 * time.Second

// fetchFunc obtains a fresh bearer token and its lifetime from the provider.
type fetchFunc func(ctx context.Context) (token string, expiresIn time.Duration, err error)

// TokenCache holds a short-lived provider bearer token. It is constructed
// once per process and injected into the flight client; it is the only
// cross-request mutable state in the service.
//
// Concurrent readers share the cached token. When the token has expired,
// concurrent callers may race to refetch; the refresh is idempotent and
// side-effect free, so the last writer simply wins.
type TokenCache struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
	fetch     fetchFunc
	now       func() time.Time
}

func NewTokenCache(fetch fetchFunc) *TokenCache {
	return &TokenCache{
		fetch: fetch,
		now:   time.Now,
	}
}

// Token returns a valid bearer token, fetching a new one if the cached token
// is missing or within the expiry margin. The provider call happens outside
// the lock so a slow refresh never blocks readers holding a valid token.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && c.now().Before(c.expiresAt) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	token, expiresIn, err := c.fetch(ctx)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.token = token
	c.expiresAt = c.now().Add(expiresIn - expiryMargin)
	c.mu.Unlock()

	return token, nil
}
