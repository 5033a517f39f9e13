// Package cache holds recent upstream responses so the REST proxy does not
// hit GitHub and the package registries on every page view.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultSize bounds the number of cached keys
const DefaultSize = 128

// DefaultLoadTimeout bounds one shared load
const DefaultLoadTimeout = 30 * time.Second

// Cache is a TTL-bounded LRU keyed by string
type Cache[V any] struct {
	lru         *expirable.LRU[string, V]
	loadTimeout time.Duration

	// one loader per key at a time
	mu       sync.Mutex
	inflight map[string]*call[V]
	// gen changes on Remove and Purge; a load started under an older
	// generation does not write back
	gen uint64
}

type call[V any] struct {
	done chan struct{}
	val  V
	err  error
}

// New creates a cache holding up to size entries for ttl each
func New[V any](size int, ttl time.Duration) *Cache[V] {
	if size <= 0 {
		size = DefaultSize
	}
	return &Cache[V]{
		lru:         expirable.NewLRU[string, V](size, nil, ttl),
		loadTimeout: DefaultLoadTimeout,
		inflight:    make(map[string]*call[V]),
	}
}

// WithLoadTimeout replaces DefaultLoadTimeout
func (c *Cache[V]) WithLoadTimeout(d time.Duration) *Cache[V] {
	c.loadTimeout = d
	return c
}

// Get returns a live entry
func (c *Cache[V]) Get(key string) (V, bool) {
	return c.lru.Get(key)
}

// Set stores an entry
func (c *Cache[V]) Set(key string, v V) {
	c.lru.Add(key, v)
}

// Remove drops an entry and discards any load in flight for it
func (c *Cache[V]) Remove(key string) {
	c.mu.Lock()
	c.gen++
	delete(c.inflight, key)
	c.lru.Remove(key)
	c.mu.Unlock()
}

// Purge drops every entry and discards loads in flight
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	c.gen++
	c.inflight = make(map[string]*call[V])
	c.lru.Purge()
	c.mu.Unlock()
}

// Len is the number of live entries
func (c *Cache[V]) Len() int {
	return c.lru.Len()
}

// GetOrLoad returns the cached value for key or runs load to fill it.
// Concurrent callers for the same key share one load, which runs detached
// from any single caller's cancellation and is bounded by the load timeout.
// A caller whose ctx ends stops waiting; the load carries on for the rest.
// Errors are not cached.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}

	c.mu.Lock()
	if v, ok := c.lru.Get(key); ok {
		c.mu.Unlock()
		return v, nil
	}
	cl, ok := c.inflight[key]
	if !ok {
		cl = &call[V]{done: make(chan struct{})}
		c.inflight[key] = cl
		go c.run(context.WithoutCancel(ctx), key, cl, c.gen, load)
	}
	c.mu.Unlock()

	select {
	case <-cl.done:
		return cl.val, cl.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

func (c *Cache[V]) run(ctx context.Context, key string, cl *call[V], gen uint64, load func(context.Context) (V, error)) {
	lctx, cancel := context.WithTimeout(ctx, c.loadTimeout)
	defer cancel()
	cl.val, cl.err = load(lctx)

	c.mu.Lock()
	if cl.err == nil && gen == c.gen {
		c.lru.Add(key, cl.val)
	}
	if c.inflight[key] == cl {
		delete(c.inflight, key)
	}
	c.mu.Unlock()
	close(cl.done)
}
