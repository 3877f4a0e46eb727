package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileCache stores one JSON file per key below a directory.
// A key "sid/serde-1.0.100" maps to <dir>/sid/serde-1.0.100.json.
type FileCache struct {
	dir string
	now func() time.Time
}

// NewFileCache creates a file-based cache in the given directory.
// The directory will be created if it doesn't exist.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ioError(err, "create", dir)
	}
	return &FileCache{dir: dir, now: time.Now}, nil
}

// fileEntry is the on-disk envelope.
type fileEntry struct {
	Version   int             `json:"v"`
	From      time.Time       `json:"from"`
	ExpiresAt time.Time       `json:"expires_at,omitempty"`
	Data      json.RawMessage `json:"data"`
}

// Dir returns the cache root.
func (c *FileCache) Dir() string { return c.dir }

// Get retrieves a value from the cache. Entries that cannot be decoded or
// carry another schema version are removed. Read failures other than a
// missing file are returned.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.Path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ioError(err, "read", key)
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Version != schemaVersion || len(entry.Data) == 0 {
		_ = os.Remove(path)
		return nil, false, nil
	}

	if !entry.ExpiresAt.IsZero() && c.now().After(entry.ExpiresAt) {
		return nil, false, nil
	}

	return entry.Data, true, nil
}

// Set stores a value in the cache. data must be valid JSON.
// The file is written to a temporary name and renamed into place.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	now := c.now()
	entry := fileEntry{
		Version: schemaVersion,
		From:    now,
		Data:    data,
	}
	if ttl > 0 {
		entry.ExpiresAt = now.Add(ttl)
	}

	buf, err := json.Marshal(entry)
	if err != nil {
		return ioError(err, "encode", key)
	}

	path := c.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ioError(err, "write", key)
	}

	tmp := path + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return ioError(err, "write", key)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return ioError(err, "write", key)
	}
	return nil
}

// Delete removes a value from the cache.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.Path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return ioError(err, "delete", key)
}

// Clear removes every entry below prefix ("sid", "new") or the whole cache
// when prefix is empty. It returns the number of files removed.
func (c *FileCache) Clear(prefix string) (int, error) {
	root := c.dir
	if prefix != "" {
		root = filepath.Join(c.dir, safeSegment(prefix))
	}

	removed := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, ioError(err, "clear", root)
	}
	return removed, nil
}

// Close does nothing for file cache.
func (c *FileCache) Close() error {
	return nil
}

// Path converts a cache key to a file path. Each "/"-separated key segment
// becomes a directory level; unsafe segments are replaced by their hash.
func (c *FileCache) Path(key string) string {
	segs := strings.Split(key, "/")
	parts := make([]string, 0, len(segs)+1)
	parts = append(parts, c.dir)
	for _, seg := range segs {
		parts = append(parts, safeSegment(seg))
	}
	return filepath.Join(parts...) + ".json"
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
