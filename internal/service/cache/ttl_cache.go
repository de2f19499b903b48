// Package cache provides an in-process TTL map for live objects that cannot be serialized.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	v   V
	ttl time.Duration
	exp time.Time
}

// TTLCache is a map whose entries expire after a period without access.
// Get refreshes the expiry (sliding TTL). Expired entries are passed to the
// eviction callback exactly once.
type TTLCache[V any] struct {
	mu      sync.Mutex
	m       map[string]entry[V]
	onEvict func(key string, v V)
	now     func() time.Time
}

// NewTTLCache creates a cache. onEvict may be nil.
func NewTTLCache[V any](onEvict func(key string, v V)) *TTLCache[V] {
	return &TTLCache[V]{
		m:       make(map[string]entry[V]),
		onEvict: onEvict,
		now:     time.Now,
	}
}

// Get returns the value for key and extends its lifetime.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	e, ok := c.m[key]
	if !ok {
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	now := c.now()
	if !e.exp.IsZero() && now.After(e.exp) {
		delete(c.m, key)
		c.mu.Unlock()
		c.evict(key, e.v)
		var zero V
		return zero, false
	}
	if e.ttl > 0 {
		e.exp = now.Add(e.ttl)
		c.m[key] = e
	}
	c.mu.Unlock()
	return e.v, true
}

// Set stores v. A non-positive ttl never expires.
func (c *TTLCache[V]) Set(key string, v V, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.m[key] = entry[V]{v: v, ttl: ttl, exp: exp}
	c.mu.Unlock()
}

// Delete removes key and reports whether it was present. No callback runs.
func (c *TTLCache[V]) Delete(key string) (V, bool) {
	c.mu.Lock()
	e, ok := c.m[key]
	delete(c.m, key)
	c.mu.Unlock()
	return e.v, ok
}

// Len returns the number of entries, expired ones included until swept.
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// Sweep evicts expired entries and returns how many were removed.
func (c *TTLCache[V]) Sweep() int {
	now := c.now()
	var expired []entry[V]
	var keys []string

	c.mu.Lock()
	for k, e := range c.m {
		if !e.exp.IsZero() && now.After(e.exp) {
			keys = append(keys, k)
			expired = append(expired, e)
			delete(c.m, k)
		}
	}
	c.mu.Unlock()

	for i, k := range keys {
		c.evict(k, expired[i].v)
	}
	return len(keys)
}

// Drain removes every entry, passing each to the eviction callback.
func (c *TTLCache[V]) Drain() {
	c.mu.Lock()
	old := c.m
	c.m = make(map[string]entry[V])
	c.mu.Unlock()

	for k, e := range old {
		c.evict(k, e.v)
	}
}

func (c *TTLCache[V]) evict(key string, v V) {
	if c.onEvict != nil {
		c.onEvict(key, v)
	}
}
