package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryProvider is an in-process Provider bounded by entry count and lifetime. The LRU
// reclaims expired entries in the background, so range keys that are never read again
// do not accumulate.
type MemoryProvider struct {
	lru *expirable.LRU[string, entry]
	now func() time.Time
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryProvider creates a cache holding at most size entries, each living at most ttl.
// A Set with a shorter ttl expires that entry earlier.
func NewMemoryProvider(size int, ttl time.Duration) *MemoryProvider {
	if size <= 0 {
		size = 1024
	}
	return &MemoryProvider{
		lru: expirable.NewLRU[string, entry](size, nil, ttl),
		now: time.Now,
	}
}

// Get returns a copy of the stored bytes, or ErrCacheMiss when absent or expired.
func (c *MemoryProvider) Get(_ context.Context, key string) ([]byte, error) {
	it, ok := c.lru.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	if !it.expiresAt.IsZero() && c.now().After(it.expiresAt) {
		c.lru.Remove(key)
		return nil, ErrCacheMiss
	}
	return append([]byte(nil), it.value...), nil
}

// Set stores a copy of value. A non-positive ttl falls back to the cache-wide lifetime.
func (c *MemoryProvider) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = c.now().Add(ttl)
	}
	c.lru.Add(key, entry{value: append([]byte(nil), value...), expiresAt: expires})
	return nil
}

// Del removes an entry.
func (c *MemoryProvider) Del(_ context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Len reports the number of held entries, including ones not yet reclaimed.
func (c *MemoryProvider) Len() int {
	return c.lru.Len()
}

// Close drops every entry.
func (c *MemoryProvider) Close() error {
	c.lru.Purge()
	return nil
}
