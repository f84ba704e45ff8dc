package cache

import (
	"context"
	"sync"
	"time"

	"github.com/amirasaad/ledger/pkg/cache"
	"golang.org/x/sync/singleflight"
)

// MemoryCache implements cache.Cache in process memory.
type MemoryCache struct {
	ttl   time.Duration
	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]*cacheEntry
	// gens and inflight only hold keys with a compute running.
	gens     map[string]uint64
	inflight map[string]int

	stop     chan struct{}
	stopOnce sync.Once
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache. A ttl of zero keeps entries
// until they are invalidated.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	c := &MemoryCache{
		ttl:      ttl,
		cache:    make(map[string]*cacheEntry),
		gens:     make(map[string]uint64),
		inflight: make(map[string]int),
		stop:     make(chan struct{}),
	}

	// Start cleanup goroutine
	go c.cleanup(5 * time.Minute)

	return c
}

func (c *MemoryCache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lookup(key)
}

func (c *MemoryCache) lookup(key string) ([]byte, bool) {
	entry, exists := c.cache[key]
	if !exists {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

// begin returns the stored value, or registers a compute for key and
// returns the generation it must match to store its result.
func (c *MemoryCache) begin(key string) ([]byte, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.lookup(key); ok {
		return v, 0, true
	}
	c.inflight[key]++
	return nil, c.gens[key], false
}

// GetOrCompute returns the cached value or computes and stores it.
func (c *MemoryCache) GetOrCompute(ctx context.Context, key string, compute cache.ComputeFunc) ([]byte, error) {
	if v, ok := c.get(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		v, gen, ok := c.begin(key)
		if ok {
			return v, nil
		}
		stored := false
		defer func() { c.finish(key, v, gen, stored) }()
		var err error
		if v, err = compute(ctx); err != nil {
			return nil, err
		}
		stored = true
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// finish stores value unless key was invalidated after gen was read, and
// drops the key's bookkeeping once no compute is left.
func (c *MemoryCache) finish(key string, value []byte, gen uint64, store bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if store && c.gens[key] == gen {
		entry := &cacheEntry{value: value}
		if c.ttl > 0 {
			entry.expiresAt = time.Now().Add(c.ttl)
		}
		c.cache[key] = entry
	}
	if c.inflight[key]--; c.inflight[key] <= 0 {
		delete(c.inflight, key)
		delete(c.gens, key)
	}
}

// Invalidate removes key from cache.
func (c *MemoryCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.cache, key)
	if c.inflight[key] > 0 {
		c.gens[key]++
	}
	c.mu.Unlock()

	c.group.Forget(key)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Close stops the cleanup goroutine.
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

// cleanup removes expired entries from cache
func (c *MemoryCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.cache {
				if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
					delete(c.cache, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

var _ cache.Cache = (*MemoryCache)(nil)
