// Package observability provides hooks for instrumenting resolution runs.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers can register
// hooks at startup to receive events about package resolution, session cache
// operations, and workspace linking.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, plain counters)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetResolveHooks(&myResolveHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Resolve().OnResolveStart(name)
//	// ... pin the identity, load the target manifest ...
//	observability.Resolve().OnResolveComplete(name, version, duration, err)
package observability

import (
	"sync"
	"time"
)

// =============================================================================
// Resolve Hooks
// =============================================================================

// ResolveHooks receives events as individual packages are resolved.
type ResolveHooks interface {
	// OnResolveStart records that resolution of a package began.
	OnResolveStart(pkg string)

	// OnResolveComplete records the outcome of resolving one package.
	// version is empty when err is non-nil.
	OnResolveComplete(pkg, version string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from session cache operations.
type CacheHooks interface {
	// OnHit records a cache hit for key.
	OnHit(key string)

	// OnMiss records a cache miss for key.
	OnMiss(key string)

	// OnStore records that a value was stored under key. Stores discarded
	// in favor of an existing entry do not emit an event.
	OnStore(key string)
}

// =============================================================================
// Link Hooks
// =============================================================================

// LinkHooks receives events as resolved packages are linked into the
// workspace.
type LinkHooks interface {
	// OnLink records one link materialization attempt and its outcome.
	OnLink(pkg, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopResolveHooks is a no-op implementation of ResolveHooks.
type NoopResolveHooks struct{}

func (NoopResolveHooks) OnResolveStart(string)                                   {}
func (NoopResolveHooks) OnResolveComplete(string, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnHit(string)   {}
func (NoopCacheHooks) OnMiss(string)  {}
func (NoopCacheHooks) OnStore(string) {}

// NoopLinkHooks is a no-op implementation of LinkHooks.
type NoopLinkHooks struct{}

func (NoopLinkHooks) OnLink(string, string, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	resolveHooks ResolveHooks = NoopResolveHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	linkHooks    LinkHooks    = NoopLinkHooks{}
	hooksMu      sync.RWMutex
)

// SetResolveHooks registers custom resolve hooks.
// This should be called once at application startup before any resolution.
func SetResolveHooks(h ResolveHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		resolveHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetLinkHooks registers custom link hooks.
// This should be called once at application startup before any linking.
func SetLinkHooks(h LinkHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		linkHooks = h
	}
}

// Resolve returns the registered resolve hooks.
func Resolve() ResolveHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return resolveHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Link returns the registered link hooks.
func Link() LinkHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return linkHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	resolveHooks = NoopResolveHooks{}
	cacheHooks = NoopCacheHooks{}
	linkHooks = NoopLinkHooks{}
}
