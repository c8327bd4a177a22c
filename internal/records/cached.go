package records

import (
	"context"
	"strings"
	"sync"
)

var (
	_ Store  = (*Cached)(nil)
	_ Pinger = (*Cached)(nil)
)

// Cached memoises successful lookups of another store. Misses and errors are
// not cached, so a case added later is found on the next attempt.
type Cached struct {
	next Store

	mu   sync.RWMutex
	hits map[string]*Record
}

// NewCached wraps next.
func NewCached(next Store) *Cached {
	return &Cached{next: next, hits: make(map[string]*Record)}
}

// Lookup implements [Store].
func (c *Cached) Lookup(ctx context.Context, id string) (*Record, error) {
	key := strings.ToUpper(strings.TrimSpace(id))
	c.mu.RLock()
	r, ok := c.hits[key]
	c.mu.RUnlock()
	if ok {
		return r, nil
	}

	r, err := c.next.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.hits[key] = r
	c.mu.Unlock()
	return r, nil
}

// Ping implements [Pinger] by probing the wrapped store.
func (c *Cached) Ping(ctx context.Context) error { return Ping(ctx, c.next) }

// Reset drops every cached record.
func (c *Cached) Reset() {
	c.mu.Lock()
	c.hits = make(map[string]*Record)
	c.mu.Unlock()
}

// Len returns the number of cached records.
func (c *Cached) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.hits)
}
