package cache

import (
	"context"
	"sync"
	"time"

	"github.com/srgjo27/meeting_room/internal/platform/clock"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is a process-local TTL cache. Expired keys are dropped
// lazily on read.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]entry
	clock clock.Clock
}

func NewMemoryCache(c clock.Clock) *MemoryCache {
	return &MemoryCache{
		items: make(map[string]entry),
		clock: c,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return "", false, nil
	}

	if !e.expiresAt.IsZero() && !c.clock.Now().Before(e.expiresAt) {
		delete(c.items, key)
		return "", false, nil
	}

	return e.value, true, nil
}

// Set stores value under key. A ttl <= 0 keeps the key until overwritten.
func (c *MemoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.clock.Now().Add(ttl)
	}

	c.mu.Lock()
	c.items[key] = e
	c.mu.Unlock()

	return nil
}
