// Package cachemem holds a small TTL cache for attester configurations so
// the registration hot path does not hit the configuration store on every
// call. Entries expire, which is how key rotations become visible.
package cachemem

import (
	"context"
	"sync"
	"time"

	"sealreg/internal/domain"
	"sealreg/internal/usecase"
)

type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     domain.AttesterConfig
	expiresAt time.Time
	hasExpiry bool
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cache) Get(ctx context.Context, attesterID string) (*domain.AttesterConfig, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[attesterID]
	if !ok {
		return nil, false, nil
	}
	if entry.hasExpiry && time.Now().After(entry.expiresAt) {
		delete(c.entries, attesterID)
		return nil, false, nil
	}
	value := entry.value
	return &value, true, nil
}

func (c *Cache) Put(ctx context.Context, attesterID string, cfg domain.AttesterConfig, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := cacheEntry{value: cfg}
	if ttl > 0 {
		entry.hasExpiry = true
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.entries[attesterID] = entry
	return nil
}

var _ usecase.AttesterConfigCache = (*Cache)(nil)
