package forecast

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Cache holds the last fetched forecast set together with its fetch time.
// Freshness is an explicit check against the configured TTL; callers decide
// whether to refetch. Safe for concurrent use.
type Cache struct {
	mu        sync.RWMutex
	set       *Set
	fetchedAt time.Time
	ttl       time.Duration
}

// NewCache creates a cache with the given validity window.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl}
}

// Put stores a freshly fetched set and stamps it with the current time.
func (c *Cache) Put(set *Set) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set = set
	c.fetchedAt = time.Now()
}

// Get returns the cached set and its fetch time, or false when empty.
func (c *Cache) Get() (*Set, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.set == nil {
		return nil, time.Time{}, false
	}
	return c.set, c.fetchedAt, true
}

// Fresh reports whether the cached set is still within the TTL.
func (c *Cache) Fresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.set != nil && time.Since(c.fetchedAt) < c.ttl
}

// Invalidate drops the cached set, e.g. after a location change.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set = nil
	c.fetchedAt = time.Time{}
}

// cacheFile is the on-disk persistence envelope.
type cacheFile struct {
	Timestamp time.Time `json:"timestamp"`
	Data      *Set      `json:"data"`
}

// SaveFile persists the cached set so a restart can reuse it.
func (c *Cache) SaveFile(path string) error {
	c.mu.RLock()
	envelope := cacheFile{Timestamp: c.fetchedAt, Data: c.set}
	c.mu.RUnlock()

	if envelope.Data == nil {
		return nil
	}

	payload, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal forecast cache: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write forecast cache: %w", err)
	}
	return nil
}

// LoadFile restores a persisted set if it is still within the TTL.
// A missing or stale file is not an error; the cache just stays empty.
func (c *Cache) LoadFile(path string) (bool, error) {
	payload, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read forecast cache: %w", err)
	}

	var envelope cacheFile
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return false, fmt.Errorf("decode forecast cache: %w", err)
	}
	if envelope.Data == nil || time.Since(envelope.Timestamp) >= c.ttl {
		return false, nil
	}

	c.mu.Lock()
	c.set = envelope.Data
	c.fetchedAt = envelope.Timestamp
	c.mu.Unlock()
	return true, nil
}
