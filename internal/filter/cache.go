package filter

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultCacheCapacity bounds the number of memoized evaluations.
	DefaultCacheCapacity = 256

	// DefaultCacheMaxAge is how long an entry is served before it is
	// treated as a miss.
	DefaultCacheMaxAge = 5 * time.Minute
)

// cacheEntry is one memoized name-only evaluation.
type cacheEntry struct {
	Key       string    `json:"key"`
	Positions []uint32  `json:"positions"`
	StoredAt  time.Time `json:"storedAt"`
}

// ResultCache memoizes name-only filter evaluations. Keys embed the index
// generation, so every index rebuild invalidates all prior entries without
// explicit eviction. At capacity the oldest-inserted entry is dropped.
// Expired entries are treated as misses but are only removed by the
// background sweep.
type ResultCache struct {
	mu       sync.Mutex
	capacity int
	maxAge   time.Duration
	entries  map[string]*cacheEntry
	order    []string // insertion order, oldest first

	dir    string // optional persistence directory, empty disables it
	logger *slog.Logger
}

// NewResultCache creates a cache with the given capacity and entry max
// age; zero values select the defaults. When dir is non-empty, entries are
// persisted as JSON files under it and loaded back on construction.
func NewResultCache(capacity int, maxAge time.Duration, dir string, logger *slog.Logger) *ResultCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	if maxAge <= 0 {
		maxAge = DefaultCacheMaxAge
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &ResultCache{
		capacity: capacity,
		maxAge:   maxAge,
		entries:  make(map[string]*cacheEntry),
		dir:      dir,
		logger:   logger,
	}
	if dir != "" {
		c.loadPersisted()
	}
	return c
}

// CacheKey builds the cache key for a set of filter query parameters
// against one index generation.
func CacheKey(rawFilters []string, generation uint64) string {
	return strings.Join(rawFilters, "|") + ":" + strconv.FormatUint(generation, 10)
}

// Get returns the memoized positions for key, or false when the key is
// unknown or its entry has outlived the max age.
func (c *ResultCache) Get(key string) ([]uint32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(entry.StoredAt) > c.maxAge {
		// Stale entries are ignored, not purged; the sweep removes them.
		return nil, false
	}

	positions := make([]uint32, len(entry.Positions))
	copy(positions, entry.Positions)
	return positions, true
}

// Put memoizes positions under key, evicting the oldest-inserted entry
// when the cache is full.
func (c *ResultCache) Put(key string, positions []uint32) {
	stored := make([]uint32, len(positions))
	copy(stored, positions)
	entry := &cacheEntry{Key: key, Positions: stored, StoredAt: time.Now()}

	c.mu.Lock()
	if _, exists := c.entries[key]; exists {
		c.removeFromOrderLocked(key)
	}
	c.entries[key] = entry
	c.order = append(c.order, key)

	var evicted []string
	for len(c.entries) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		evicted = append(evicted, oldest)
	}
	c.mu.Unlock()

	if c.dir != "" {
		go c.persist(entry, evicted)
	}
}

// Len returns the number of entries currently held, expired ones included.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// StartSweep launches a goroutine that periodically removes expired
// entries until ctx is canceled.
func (c *ResultCache) StartSweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = c.maxAge
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

func (c *ResultCache) sweep() {
	c.mu.Lock()
	var removed []string
	for key, entry := range c.entries {
		if time.Since(entry.StoredAt) > c.maxAge {
			delete(c.entries, key)
			c.removeFromOrderLocked(key)
			removed = append(removed, key)
		}
	}
	c.mu.Unlock()

	if len(removed) > 0 {
		c.logger.Debug("swept expired cache entries", "count", len(removed))
		if c.dir != "" {
			go c.persist(nil, removed)
		}
	}
}

// removeFromOrderLocked drops key from the insertion-order list. Caller
// must hold c.mu.
func (c *ResultCache) removeFromOrderLocked(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// persist writes one entry file and deletes the files of evicted keys.
// Runs off the caller's goroutine; cache file I/O never blocks queries.
func (c *ResultCache) persist(entry *cacheEntry, evicted []string) {
	if entry != nil {
		data, err := json.Marshal(entry)
		if err == nil {
			err = os.WriteFile(c.entryPath(entry.Key), data, 0o600)
		}
		if err != nil {
			c.logger.Warn("failed to persist cache entry", "error", err)
		}
	}
	for _, key := range evicted {
		if err := os.Remove(c.entryPath(key)); err != nil && !os.IsNotExist(err) {
			c.logger.Warn("failed to remove cache entry file", "error", err)
		}
	}
}

func (c *ResultCache) entryPath(key string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%x.json", sha256.Sum256([]byte(key))))
}

// loadPersisted restores entries from the persistence directory. Files
// that fail to parse or have expired are skipped.
func (c *ResultCache) loadPersisted() {
	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		c.logger.Warn("failed to create cache directory", "dir", c.dir, "error", err)
		return
	}

	matches, err := filepath.Glob(filepath.Join(c.dir, "*.json"))
	if err != nil {
		return
	}
	for _, path := range matches {
		data, err := os.ReadFile(path) //nolint:gosec // paths come from the configured cache dir
		if err != nil {
			continue
		}
		var entry cacheEntry
		if err := json.Unmarshal(data, &entry); err != nil || entry.Key == "" {
			continue
		}
		if time.Since(entry.StoredAt) > c.maxAge {
			continue
		}
		c.entries[entry.Key] = &entry
		c.order = append(c.order, entry.Key)
	}
	if len(c.entries) > 0 {
		c.logger.Debug("restored persisted cache entries", "count", len(c.entries))
	}
}
