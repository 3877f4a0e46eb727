// Package cache stores classification results between runs.
//
// Keys have the form "<release>/<name>-<version>" (see [StatusKey]). The
// default [FileCache] keeps one JSON file per key under the user cache
// directory; [RedisCache] shares entries between machines; [NullCache]
// disables caching. Entries older than [TTL] are treated as absent.
//
// No locking is performed. Two writers racing on the same key both produce
// a complete file and the last rename wins.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// TTL is how long a classification stays fresh.
const TTL = 90 * time.Minute

// AppName names the per-user cache directory.
const AppName = "cargo-debstatus"

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored bytes and true on a fresh hit. Absent, stale
	// and undecodable entries are reported as a miss with a nil error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key for ttl.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// StatusKey builds the key for a (release, package, version) triple.
func StatusKey(release, name, version string) string {
	return release + "/" + name + "-" + version
}

// DefaultDir returns the per-user cache directory, honouring
// $XDG_CACHE_HOME on every platform.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}
