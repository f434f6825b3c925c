package diskutil

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Cache implements disk backed cache storage
type Cache struct {
	diskRoot string
	logger   *logrus.Entry
}

// NewCache returns a new Cache given the root directory that should be used
// on disk for cache storage
func NewCache(diskRoot string) *Cache {
	root := filepath.Clean(diskRoot)
	return &Cache{
		diskRoot: root,
		logger:   logrus.WithField("cache", root),
	}
}

// KeyToPath converts a cache entry key to a path on disk
func (c *Cache) KeyToPath(key string) string {
	return filepath.Join(c.diskRoot, key)
}

// PathToKey converts a path on disk to a key, assuming the path is actually
// under DiskRoot() ...
func (c *Cache) PathToKey(path string) string {
	return strings.TrimPrefix(path, c.diskRoot+string(os.PathSeparator))
}

// DiskRoot returns the root directory containing all on-disk cache entries
func (c *Cache) DiskRoot() string {
	return c.diskRoot
}

// EntryInfo are returned when getting entries from the cache
type EntryInfo struct {
	Path       string
	Size       int64
	LastAccess time.Time
}

// GetEntries walks the cache dir and returns all paths that exist
func (c *Cache) GetEntries() []EntryInfo {
	entries := []EntryInfo{}
	now := time.Now()
	// note we swallow errors because we just need to know what keys exist
	// some keys missing is OK since this is used for eviction, but not returning
	// any of the keys due to some error is NOT
	_ = filepath.Walk(c.diskRoot, func(path string, f os.FileInfo, err error) error {
		if err != nil {
			c.logger.WithError(err).Error("error getting some entries")
			return nil
		}
		if !f.IsDir() {
			entries = append(entries, EntryInfo{
				Path:       path,
				Size:       f.Size(),
				LastAccess: atimeOf(f, now),
			})
		}
		return nil
	})
	return entries
}

// Delete deletes the file at key
func (c *Cache) Delete(key string) error {
	return os.Remove(c.KeyToPath(key))
}
