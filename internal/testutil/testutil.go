// Package testutil provides shared test helpers: a throwaway SQLite
// store and an in-memory bucket with failure injection.
package testutil

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/areaewhy/JoplinView/internal/models"
	"github.com/areaewhy/JoplinView/internal/store"
)

// TestStore creates a temporary SQLite store that is automatically
// cleaned up.
func TestStore(t *testing.T) *store.DB {
	t.Helper()
	f, err := os.CreateTemp("", "joplinview-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := store.Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Bucket is an in-memory object store. Listing order is insertion
// order, which keeps first-seen classification deterministic in tests.
type Bucket struct {
	mu      sync.Mutex
	keys    []string
	data    map[string][]byte
	ListErr error
	GetErrs map[string]error
}

// NewBucket returns an empty bucket.
func NewBucket() *Bucket {
	return &Bucket{
		data:    make(map[string][]byte),
		GetErrs: make(map[string]error),
	}
}

// Put stores an object, appending to the listing order on first write.
func (b *Bucket) Put(key, content string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.data[key]; !exists {
		b.keys = append(b.keys, key)
	}
	b.data[key] = []byte(content)
}

// List implements objstore.Store.
func (b *Bucket) List(_ context.Context, prefix string) ([]models.ObjectInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ListErr != nil {
		return nil, b.ListErr
	}
	var out []models.ObjectInfo
	for _, k := range b.keys {
		if !strings.HasSuffix(k, ".md") {
			continue
		}
		if prefix != "" && !strings.HasPrefix(k, prefix) {
			continue
		}
		out = append(out, models.ObjectInfo{Key: k, Size: int64(len(b.data[k]))})
	}
	return out, nil
}

// Get implements objstore.Store.
func (b *Bucket) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.GetErrs[key]; err != nil {
		return nil, err
	}
	data, ok := b.data[key]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}
