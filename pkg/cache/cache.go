// Package cache provides a canonical-table cache keyed by a source-file
// fingerprint. The loaded table is pure in the source file (plus the fixed
// year filter), so one entry can be shared read-only across concurrent
// discovery runs; a fingerprint change invalidates it.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/procflow/procflow/internal/model"
)

// TableCache caches normalized tables by source fingerprint.
type TableCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	hits    int64
	misses  int64
}

type entry struct {
	fingerprint string
	table       *model.Table
	loadedAt    time.Time
}

// New creates an empty cache.
func New() *TableCache {
	return &TableCache{entries: make(map[string]*entry)}
}

// Fingerprint derives the cache key for a source file from its path, size
// and modification time. Reading file contents is avoided on purpose: the
// source may be large, and mtime+size is enough to catch re-exports.
func Fingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())))
	return hex.EncodeToString(h[:]), nil
}

// Get returns the cached table for a source path if its fingerprint still
// matches the file on disk.
func (c *TableCache) Get(path string) (*model.Table, bool) {
	fp, err := Fingerprint(path)
	if err != nil {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()

	if !ok || e.fingerprint != fp {
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		return nil, false
	}

	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return e.table, true
}

// Put stores a table under the source path's current fingerprint.
func (c *TableCache) Put(path string, table *model.Table) {
	fp, err := Fingerprint(path)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = &entry{
		fingerprint: fp,
		table:       table,
		loadedAt:    time.Now(),
	}
}

// Invalidate drops the entry for a source path.
func (c *TableCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, path)
}

// Stats returns hit/miss counters.
func (c *TableCache) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
