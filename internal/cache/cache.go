// Package cache remembers which files were already clean under a given
// rule set, so repeated fix runs skip them.
package cache

import (
	"crypto/md5"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const fileName = "tokpat_cache.gob"

type fileMetadata struct {
	Hash         string
	LastModified time.Time
}

type entry struct {
	Metadata  fileMetadata
	RulesHash string
	CheckedAt time.Time
}

type Cache struct {
	dir     string
	entries map[string]entry
	mutex   sync.RWMutex
	// zero means entries never expire
	maxAge time.Duration
}

// New opens the cache stored in dir, creating dir if needed.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		dir:     dir,
		entries: make(map[string]entry),
	}
	if err := c.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	return c, nil
}

func (c *Cache) path() string {
	return filepath.Join(c.dir, fileName)
}

func (c *Cache) load() error {
	file, err := os.Open(c.path())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(&c.entries); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}
	return nil
}

// Save writes the cache to disk.
func (c *Cache) Save() error {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	file, err := os.Create(c.path())
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(c.entries); err != nil {
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	return nil
}

// Fresh reports whether path is unchanged since it was recorded as clean
// under the rule set identified by rulesHash.
func (c *Cache) Fresh(path, rulesHash string) bool {
	c.mutex.RLock()
	e, exists := c.entries[path]
	maxAge := c.maxAge
	c.mutex.RUnlock()

	if !exists || e.RulesHash != rulesHash {
		return false
	}
	if maxAge > 0 && time.Since(e.CheckedAt) > maxAge {
		return false
	}

	current, err := getFileMetadata(path)
	if err != nil {
		return false
	}
	return current.Hash == e.Metadata.Hash && current.LastModified.Equal(e.Metadata.LastModified)
}

// Record marks path as clean under rulesHash in its current state.
func (c *Cache) Record(path, rulesHash string) error {
	metadata, err := getFileMetadata(path)
	if err != nil {
		return fmt.Errorf("failed to get file metadata: %w", err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries[path] = entry{
		Metadata:  metadata,
		RulesHash: rulesHash,
		CheckedAt: time.Now(),
	}
	return nil
}

// Forget drops the entry for path.
func (c *Cache) Forget(path string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	delete(c.entries, path)
}

func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.entries)
}

func (c *Cache) SetMaxAge(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.maxAge = duration
}

// InvalidateAll drops every entry and saves the empty cache.
func (c *Cache) InvalidateAll() error {
	c.mutex.Lock()
	c.entries = make(map[string]entry)
	c.mutex.Unlock()
	return c.Save()
}

func getFileMetadata(filename string) (fileMetadata, error) {
	file, err := os.Open(filename)
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return fileMetadata{}, fmt.Errorf("failed to calculate hash: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return fileMetadata{}, fmt.Errorf("failed to get file info: %w", err)
	}

	return fileMetadata{
		Hash:         fmt.Sprintf("%x", hash.Sum(nil)),
		LastModified: info.ModTime(),
	}, nil
}
