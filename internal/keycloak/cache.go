package keycloak

import (
	"context"
	"sync"
	"time"
)

// Clock injectable time source so expiry is testable
type Clock func() time.Time

// UserCache caches the realm user list with timestamp-based expiry.
// Explicit state with an injected clock instead of hidden module-level
// globals, so expiry and invalidation are independently testable.
type UserCache struct {
	mu        sync.Mutex
	users     []*User
	fetchedAt time.Time
	ttl       time.Duration
	clock     Clock
}

// NewUserCache creates a cache; a nil clock falls back to time.Now
func NewUserCache(ttl time.Duration, clock Clock) *UserCache {
	if clock == nil {
		clock = time.Now
	}
	return &UserCache{
		ttl:   ttl,
		clock: clock,
	}
}

// GetOrRefresh returns the cached list while fresh, otherwise calls
// refresh and caches its result. A failed refresh leaves the previous
// entry untouched so a stale list can still be served by a later call.
func (c *UserCache) GetOrRefresh(ctx context.Context, refresh func(ctx context.Context) ([]*User, error)) ([]*User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	if c.users != nil && now.Sub(c.fetchedAt) < c.ttl {
		return c.users, nil
	}

	users, err := refresh(ctx)
	if err != nil {
		return nil, err
	}

	c.users = users
	c.fetchedAt = now
	return users, nil
}

// Invalidate drops the cached entry
func (c *UserCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users = nil
	c.fetchedAt = time.Time{}
}
