package cache

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Entry is one cached scan result on disk.
type Entry struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
	TTL       int             `json:"ttl"`
}

// Cache stores scan results on disk keyed by the hash of their inputs.
type Cache struct {
	dir        string
	ttlSeconds int
	enabled    bool
}

// New creates a new Cache. If dir is empty, uses the default cache directory.
func New(enabled bool, dir string, ttlSeconds int) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}
	if dir == "" {
		d, err := defaultCacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{
		dir:        dir,
		ttlSeconds: ttlSeconds,
		enabled:    true,
	}, nil
}

// Get decodes the entry for key into v. It reports false on a miss, an
// expired entry or an entry that no longer decodes.
func (c *Cache) Get(key string, v any) bool {
	if !c.enabled {
		return false
	}
	path := c.entryPath(key)
	entry, err := readEntry(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Debug().Err(err).Str("path", path).Msg("unreadable cache entry")
		}
		return false
	}
	if c.expired(entry) {
		_ = os.Remove(path)
		return false
	}
	if err := json.Unmarshal(entry.Payload, v); err != nil {
		log.Debug().Err(err).Str("path", path).Msg("discarding stale cache entry")
		_ = os.Remove(path)
		return false
	}
	return true
}

// Put stores v under key. The entry is written to a temporary file and
// renamed into place so concurrent scans never observe a partial entry.
func (c *Cache) Put(key string, v any) error {
	if !c.enabled {
		return nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling cache payload: %w", err)
	}
	data, err := json.Marshal(Entry{
		Key:       HashKey(key),
		Payload:   payload,
		CreatedAt: time.Now(),
		TTL:       c.ttlSeconds,
	})
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".entry-*")
	if err != nil {
		return fmt.Errorf("creating cache entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache entry: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.entryPath(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("committing cache entry: %w", err)
	}
	return nil
}

// Clear removes all cache entries and returns how many were removed.
func (c *Cache) Clear() (int, error) {
	removed := 0
	err := c.each(func(path string, _ int64, _ Entry, _ error) {
		if os.Remove(path) == nil {
			removed++
		}
	})
	return removed, err
}

// Prune removes expired and unreadable entries and returns how many were
// removed.
func (c *Cache) Prune() (int, error) {
	removed := 0
	err := c.each(func(path string, _ int64, e Entry, readErr error) {
		if readErr == nil && !c.expired(e) {
			return
		}
		if os.Remove(path) == nil {
			removed++
		}
	})
	return removed, err
}

// Stats describes the contents of the cache directory.
type Stats struct {
	Dir        string `json:"dir"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
	Expired    int    `json:"expired"`
}

// GetStats returns information about the cache. Unreadable entries count
// as expired since the next Get or Prune removes them.
func (c *Cache) GetStats() (Stats, error) {
	stats := Stats{Dir: c.dir}
	err := c.each(func(_ string, size int64, e Entry, readErr error) {
		stats.Entries++
		stats.TotalBytes += size
		if readErr != nil || c.expired(e) {
			stats.Expired++
		}
	})
	return stats, err
}

// each calls fn for every entry file in the cache directory. readErr is
// set when the entry cannot be read or decoded. A missing directory is
// treated as empty.
func (c *Cache) each(fn func(path string, size int64, e Entry, readErr error)) error {
	if !c.enabled || c.dir == "" {
		return nil
	}
	files, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(c.dir, f.Name())
		e, readErr := readEntry(path)
		fn(path, info.Size(), e, readErr)
	}
	return nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// Enabled returns whether caching is enabled.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// HashKey creates a SHA-256 hash of the given key material.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

// BuildCacheKey creates a cache key from the scan inputs: the skills
// digest, the selected skill ids in order, the path globs whose snippets
// are redacted, and the diff text.
func BuildCacheKey(skillsDigest string, skillIDs, redactPaths []string, diff string) string {
	return HashKey(fmt.Sprintf("%s:%s:%s:%s", skillsDigest, strings.Join(skillIDs, ","), strings.Join(redactPaths, ","), diff))
}

func (c *Cache) expired(e Entry) bool {
	return c.ttlSeconds > 0 && time.Since(e.CreatedAt) > time.Duration(c.ttlSeconds)*time.Second
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, HashKey(key)+".json")
}

func readEntry(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func defaultCacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "skillscan"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "skillscan"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "skillscan", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "skillscan", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "skillscan"), nil
	}
}
