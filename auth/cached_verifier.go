package auth

import (
	"context"
	"sync"
	"time"
)

// CachedVerifier wraps an AdminVerifier with TTL-based caching of positive
// answers. Rejections are never cached, so a newly registered admin is
// accepted immediately.
type CachedVerifier struct {
	inner AdminVerifier
	cache map[uint]time.Time
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
}

// NewCachedVerifier wraps inner. A non-positive ttl disables caching.
func NewCachedVerifier(inner AdminVerifier, ttl time.Duration) *CachedVerifier {
	return &CachedVerifier{
		inner: inner,
		cache: make(map[uint]time.Time),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Verify reports whether the admin exists, using the cache when fresh.
// Errors from the wrapped verifier are returned and never cached.
func (c *CachedVerifier) Verify(ctx context.Context, adminID uint) (bool, error) {
	if c.ttl > 0 {
		c.mu.RLock()
		exp, ok := c.cache[adminID]
		c.mu.RUnlock()
		if ok && c.now().Before(exp) {
			return true, nil
		}
	}

	ok, err := c.inner(ctx, adminID)
	if err != nil {
		return false, err
	}
	if !ok {
		c.Invalidate(adminID)
		return false, nil
	}
	if c.ttl > 0 {
		c.mu.Lock()
		c.cache[adminID] = c.now().Add(c.ttl)
		c.mu.Unlock()
	}
	return true, nil
}

// Invalidate drops one admin from the cache.
func (c *CachedVerifier) Invalidate(adminID uint) {
	c.mu.Lock()
	delete(c.cache, adminID)
	c.mu.Unlock()
}
