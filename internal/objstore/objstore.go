// Package objstore defines the object-storage capability the sync
// pipeline consumes: list Markdown keys under a prefix, fetch bytes.
package objstore

import (
	"context"

	"github.com/areaewhy/JoplinView/internal/models"
)

// Store is the read-only view of the export bucket.
type Store interface {
	// List returns key and size for every .md object under prefix.
	List(ctx context.Context, prefix string) ([]models.ObjectInfo, error)
	// Get returns the raw bytes of one object.
	Get(ctx context.Context, key string) ([]byte, error)
}

// Verify implementations satisfy Store at compile time.
var (
	_ Store = (*S3)(nil)
	_ Store = (*Dir)(nil)
)
