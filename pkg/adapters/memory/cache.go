package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/revitgen/pkg/domain"
)

type cacheItem struct {
	script    domain.Script
	expiresAt time.Time
}

// minSweep is the smallest size at which Set sweeps expired items.
const minSweep = 64

// ScriptCache implements ports.ScriptCache in memory.
// Expired items are dropped on read, and swept by Set whenever the map has
// doubled since the last sweep.
type ScriptCache struct {
	mu      sync.Mutex
	items   map[string]cacheItem
	sweepAt int
	now     func() time.Time
}

// NewScriptCache creates an empty cache.
func NewScriptCache() *ScriptCache {
	return &ScriptCache{
		items:   make(map[string]cacheItem),
		sweepAt: minSweep,
		now:     time.Now,
	}
}

func (i cacheItem) expired(now time.Time) bool {
	return !i.expiresAt.IsZero() && !now.Before(i.expiresAt)
}

// Get returns a copy of the cached script.
func (c *ScriptCache) Get(ctx context.Context, key string) (*domain.Script, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	if item.expired(c.now()) {
		delete(c.items, key)
		return nil, false, nil
	}

	// Copy on read so callers can't mutate the cached value.
	script := item.script
	script.Report.Diagnostics = append([]domain.Diagnostic(nil), item.script.Report.Diagnostics...)
	return &script, true, nil
}

// Set stores a copy of script.
func (c *ScriptCache) Set(ctx context.Context, key string, script *domain.Script, ttl time.Duration) error {
	item := cacheItem{script: *script}
	item.script.Report.Diagnostics = append([]domain.Diagnostic(nil), script.Report.Diagnostics...)
	if ttl > 0 {
		item.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = item
	if len(c.items) >= c.sweepAt {
		c.sweep()
	}
	return nil
}

// sweep drops expired items. Callers hold mu.
func (c *ScriptCache) sweep() {
	now := c.now()
	for k, item := range c.items {
		if item.expired(now) {
			delete(c.items, k)
		}
	}
	c.sweepAt = max(2*len(c.items), minSweep)
}

// Len returns the number of stored items, expired or not.
func (c *ScriptCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
