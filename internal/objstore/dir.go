package objstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/areaewhy/JoplinView/internal/apperr"
	"github.com/areaewhy/JoplinView/internal/models"
)

// Dir implements Store backed by a local Joplin export directory.
// It serves two purposes: syncing an export that was rsynced or
// mounted locally, and exercising the pipeline in tests without a
// bucket.
type Dir struct {
	root string
}

// NewDir creates a Dir store rooted at the given directory, which must
// already exist.
func NewDir(root string) (*Dir, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("objstore: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("objstore: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("objstore: root is not a directory: %s", abs)
	}
	return &Dir{root: abs}, nil
}

// Root returns the absolute export directory, for the change watcher.
func (d *Dir) Root() string { return d.root }

// safePath resolves a key against the root and rejects any result that
// escapes it (directory traversal).
func (d *Dir) safePath(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("objstore: absolute keys not allowed: %s", key)
	}
	abs, err := filepath.Abs(filepath.Join(d.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("objstore: resolve key: %w", err)
	}
	if !strings.HasPrefix(abs, d.root+string(os.PathSeparator)) && abs != d.root {
		return "", fmt.Errorf("objstore: key escapes export root: %s", key)
	}
	return abs, nil
}

// List implements Store. Keys use forward slashes relative to the
// root, matching bucket key conventions.
func (d *Dir) List(_ context.Context, prefix string) ([]models.ObjectInfo, error) {
	var out []models.ObjectInfo
	err := filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		out = append(out, models.ObjectInfo{Key: key, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("objstore: list: %w", err)
	}
	return out, nil
}

// Get implements Store.
func (d *Dir) Get(_ context.Context, key string) ([]byte, error) {
	abs, err := d.safePath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("objstore: get %s: %w", key, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("objstore: get %s: %w", key, err)
	}
	return data, nil
}
