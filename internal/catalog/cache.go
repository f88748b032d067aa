package catalog

import (
	"context"
	"sync"
	"time"
)

// Cache keeps the last loaded catalog for a fixed TTL.
type Cache struct {
	loader Loader
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	current  *Catalog
	loadedAt time.Time
}

// NewCache wraps loader. A ttl of zero reloads on every call.
func NewCache(loader Loader, ttl time.Duration) *Cache {
	return &Cache{loader: loader, ttl: ttl, now: time.Now}
}

// Get returns the cached catalog, reloading it once the TTL has passed.
// A failed reload leaves the previous catalog in place.
func (c *Cache) Get(ctx context.Context) (*Catalog, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil && c.ttl > 0 && c.now().Sub(c.loadedAt) < c.ttl {
		return c.current, nil
	}

	cat, err := Load(ctx, c.loader)
	if err != nil {
		return nil, err
	}
	c.current = cat
	c.loadedAt = c.now()
	return cat, nil
}

// Invalidate drops the cached catalog so the next Get reloads it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
}
