// Package observability provides hooks for metrics about a classification run.
//
// Libraries never import a metrics backend directly. They call the hooks
// registered here, which default to no-ops; the CLI installs the Prometheus
// implementation from the prom subpackage when --metrics-file is given.
//
// # Usage
//
// Register hooks at application startup:
//
//	hooks := prom.New()
//	hooks.Install()
//	defer hooks.WriteTextfile(path)
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	rows, err := db.QueryVersions(ctx, q, names...)
//	observability.Query().OnQuery(ctx, "sid", "packages", len(rows), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Query Hooks
// =============================================================================

// QueryHooks receives one event per database round trip.
type QueryHooks interface {
	// OnQuery records a finished query against table for release.
	OnQuery(ctx context.Context, release, table string, rows int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from the status cache.
type CacheHooks interface {
	// OnCacheHit records a fresh entry served for release.
	OnCacheHit(ctx context.Context, release string)

	// OnCacheMiss records an absent, stale or discarded entry.
	OnCacheMiss(ctx context.Context, release string)

	// OnCacheSet records a cache write of size bytes.
	OnCacheSet(ctx context.Context, release string, size int)
}

// =============================================================================
// Classify Hooks
// =============================================================================

// ClassifyHooks receives events from the worker pool.
type ClassifyHooks interface {
	// OnRunStart records the start of a run over tasks packages.
	OnRunStart(ctx context.Context, tasks, workers int)

	// OnPackage records one classified package and its progress tier.
	OnPackage(ctx context.Context, tier string, duration time.Duration)

	// OnRunComplete records the end of a run.
	OnRunComplete(ctx context.Context, tasks int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopQueryHooks is a no-op implementation of QueryHooks.
type NoopQueryHooks struct{}

func (NoopQueryHooks) OnQuery(context.Context, string, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopClassifyHooks is a no-op implementation of ClassifyHooks.
type NoopClassifyHooks struct{}

func (NoopClassifyHooks) OnRunStart(context.Context, int, int)                     {}
func (NoopClassifyHooks) OnPackage(context.Context, string, time.Duration)         {}
func (NoopClassifyHooks) OnRunComplete(context.Context, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	queryHooks    QueryHooks    = NoopQueryHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	classifyHooks ClassifyHooks = NoopClassifyHooks{}
	hooksMu       sync.RWMutex
)

// SetQueryHooks registers custom query hooks.
// This should be called once at application startup before any queries run.
func SetQueryHooks(h QueryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		queryHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetClassifyHooks registers custom worker pool hooks.
func SetClassifyHooks(h ClassifyHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		classifyHooks = h
	}
}

// Query returns the registered query hooks.
func Query() QueryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return queryHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Classify returns the registered worker pool hooks.
func Classify() ClassifyHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return classifyHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	queryHooks = NoopQueryHooks{}
	cacheHooks = NoopCacheHooks{}
	classifyHooks = NoopClassifyHooks{}
}
