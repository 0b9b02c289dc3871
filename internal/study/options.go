package study

import (
	"context"
	"slices"
	"sync"
)

// OptionLoader resolves the multiple-choice options for an item. It must be
// idempotent per item id; results are cached by the caller.
type OptionLoader interface {
	LoadOptions(ctx context.Context, item Item, detail *Detail) ([]Option, error)
}

// OptionCache holds loaded options keyed by topic id. It is owned by the
// caller and may be shared by several sessions.
type OptionCache struct {
	mu   sync.RWMutex
	opts map[int64][]Option
}

// NewOptionCache creates an empty cache.
func NewOptionCache() *OptionCache {
	return &OptionCache{opts: make(map[int64][]Option)}
}

// Get returns a copy of the options cached for id.
func (c *OptionCache) Get(id int64) ([]Option, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	opts, ok := c.opts[id]
	return slices.Clone(opts), ok
}

// Put stores opts for id, replacing any earlier entry.
func (c *OptionCache) Put(id int64, opts []Option) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts[id] = slices.Clone(opts)
}

// Len returns the number of cached items.
func (c *OptionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.opts)
}
