// Package cached fronts a storage.KV with a bounded in-process LRU.
package cached

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/levelupgamer/commenttree/internal/comment/storage"
)

// item remembers misses as well as hits, so repeated probing of legacy
// candidate keys does not reach the backend.
type item struct {
	value     string
	ok        bool
	expiresAt time.Time
}

type KV struct {
	next  storage.KV
	cache *lru.Cache[string, item]
	ttl   time.Duration
	now   func() time.Time
}

// New wraps next with an LRU of the given size. A zero ttl keeps entries until evicted.
func New(next storage.KV, size int, ttl time.Duration) (*KV, error) {
	c, err := lru.New[string, item](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &KV{next: next, cache: c, ttl: ttl, now: time.Now}, nil
}

func (c *KV) Get(ctx context.Context, key string) (string, bool, error) {
	if it, ok := c.cache.Get(key); ok {
		if it.expiresAt.IsZero() || c.now().Before(it.expiresAt) {
			return it.value, it.ok, nil
		}
		c.cache.Remove(key)
	}

	v, ok, err := c.next.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	c.cache.Add(key, c.item(v, ok))
	return v, ok, nil
}

// Set writes through; the cache only learns the value once the backend accepted it.
func (c *KV) Set(ctx context.Context, key, value string) error {
	if err := c.next.Set(ctx, key, value); err != nil {
		c.cache.Remove(key)
		return err
	}
	c.cache.Add(key, c.item(value, true))
	return nil
}

func (c *KV) Remove(ctx context.Context, key string) error {
	c.cache.Remove(key)
	return c.next.Remove(ctx, key)
}

// Ping reaches the wrapped medium when it supports health checks.
func (c *KV) Ping(ctx context.Context) error {
	if p, ok := c.next.(storage.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (c *KV) item(v string, ok bool) item {
	it := item{value: v, ok: ok}
	if c.ttl > 0 {
		it.expiresAt = c.now().Add(c.ttl)
	}
	return it
}
