package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// MemoryCache is an in-process LRU alternative to Redis. Values are stored as
// JSON so callers observe the same copy semantics as with RedisClient.
type MemoryCache struct {
	cache *lru.Cache
	mu    sync.Mutex
	now   func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryCache(maxSize int) (*MemoryCache, error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{cache: cache, now: time.Now}, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := memoryEntry{data: data}
	if expiration > 0 {
		entry.expiresAt = c.now().Add(expiration)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(key, entry)
	return nil
}

func (c *MemoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	val, found := c.cache.Get(key)
	if !found {
		c.mu.Unlock()
		return ErrCacheMiss
	}
	entry := val.(memoryEntry)
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.cache.Remove(key)
		c.mu.Unlock()
		return ErrCacheMiss
	}
	c.mu.Unlock()
	return json.Unmarshal(entry.data, dest)
}

func (c *MemoryCache) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of cached entries, expired ones included.
func (c *MemoryCache) Len() int {
	return c.cache.Len()
}
