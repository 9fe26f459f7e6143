// Package blob provides the key-value blob store used to cache SPC bulletins.
// The disk implementation suits single-node deployments; the interface in the
// spc package allows object storage to be substituted.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DiskCache stores blobs as files under a base directory, one file per key.
type DiskCache struct {
	dir string
}

// NewDiskCache creates the base directory if needed and returns a cache.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Get returns the blob for key, reporting a miss when the key is absent.
func (c *DiskCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cached blob %s: %w", key, err)
	}
	return data, true, nil
}

// Put stores the blob under key, overwriting any existing value.
func (c *DiskCache) Put(_ context.Context, key string, data []byte) error {
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		return fmt.Errorf("write cached blob %s: %w", key, err)
	}
	return nil
}

// path confines keys to the cache directory; any path components in the key
// are stripped.
func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, filepath.Base(key))
}
