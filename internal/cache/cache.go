package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Cache stores embedding vectors on disk, one JSON file per key.
type Cache struct {
	dir string
	mu  sync.Mutex
}

// entry is the on-disk format of a cached vector.
type entry struct {
	Model  string    `json:"model"`
	Vector []float32 `json:"vector"`
}

// New creates a new cache instance with the specified directory.
// An empty dir disables the cache.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Key derives the cache key for a text embedded with a given model.
func Key(model, text string) string {
	h := sha256.New()
	_ = writeString(h, model)
	_ = writeString(h, text)
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached vector if it exists
func (c *Cache) Get(key string) ([]float32, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.cachePath(key))
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		// Invalid cache entry, treat as miss
		return nil, false
	}

	return e.Vector, true
}

// Put stores a vector in the cache
func (c *Cache) Put(key, model string, vec []float32) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.Marshal(entry{Model: model, Vector: vec})
	if err != nil {
		return fmt.Errorf("marshaling vector: %w", err)
	}

	// Write to a temp file first so readers never see a partial entry.
	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.cachePath(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Clear removes all cached vectors
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	// Safety check: only remove a directory that holds nothing but cache files.
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}

	if len(entries) > 0 {
		hasValidCache := false
		for _, e := range entries {
			if e.IsDir() {
				return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
			}
			if filepath.Ext(e.Name()) == ".json" {
				hasValidCache = true
			} else {
				return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
			}
		}
		if !hasValidCache {
			return fmt.Errorf("no valid cache files found in directory - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

// cachePath returns the file path for a cache key
func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func writeString(w io.Writer, s string) error {
	// Null byte delimiter prevents collisions between adjacent fields.
	_, err := w.Write([]byte(s + "\x00"))
	return err
}
