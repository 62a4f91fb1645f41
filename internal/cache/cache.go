// Package cache holds the process-wide response snapshot written after
// each successful sync.
package cache

import (
	"sync"
	"time"

	"github.com/areaewhy/JoplinView/internal/models"
)

// DefaultTTL is the snapshot freshness window.
const DefaultTTL = time.Hour

// Snapshot is the full sync result: the note set, the status record,
// and the instant it was written. It is always replaced whole, never
// partially updated.
type Snapshot struct {
	Notes     []models.Note
	Status    models.SyncStatus
	Timestamp time.Time
}

// Cache is a single-value snapshot store guarded by a mutex. The
// single-writer assumption makes Put an unconditional overwrite.
type Cache struct {
	mu   sync.RWMutex
	ttl  time.Duration
	snap *Snapshot
	now  func() time.Time
}

// New creates a cache with the given freshness window; ttl <= 0 uses
// DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{ttl: ttl, now: time.Now}
}

// Get returns the stored snapshot, or nil when nothing was written yet.
func (c *Cache) Get() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Put overwrites the snapshot and stamps it with the current time.
func (c *Cache) Put(notes []models.Note, status models.SyncStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = &Snapshot{Notes: notes, Status: status, Timestamp: c.now()}
}

// Fresh reports whether a snapshot exists and is younger than the
// freshness window.
func (c *Cache) Fresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap != nil && c.now().Sub(c.snap.Timestamp) < c.ttl
}
