// Package cache provides the resolution-session store.
//
// A Session memoizes target manifests by package identity for the lifetime
// of one resolution run. Manifests are a pure function of directory contents
// and directories are treated as immutable while a session lasts, so a
// redundant concurrent store is harmless: the first stored manifest wins and
// equivalent late writes are discarded.
//
// Sessions must not outlive a resolution run. Create a fresh Session (or
// call Reset) between independent runs so a memoized manifest cannot mask an
// on-disk edit made in between.
package cache

import (
	"sync"

	"github.com/google/uuid"

	"github.com/lljwdbklb/pub/pkg/manifest"
	"github.com/lljwdbklb/pub/pkg/observability"
)

// Session is the identity→manifest store shared by all sources within one
// resolution run.
type Session struct {
	mu        sync.RWMutex
	id        string
	manifests map[string]*manifest.Manifest
}

// NewSession creates an empty session with a fresh identifier.
func NewSession() *Session {
	return &Session{
		id:        uuid.NewString(),
		manifests: make(map[string]*manifest.Manifest),
	}
}

// ID returns the session identifier, used for log correlation.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// Manifest returns the memoized manifest for key, if any.
func (s *Session) Manifest(key string) (*manifest.Manifest, bool) {
	s.mu.RLock()
	m, ok := s.manifests[key]
	s.mu.RUnlock()

	// Hooks run outside the lock so an instrumented lookup cannot block a
	// concurrent store.
	if ok {
		observability.Cache().OnHit(key)
	} else {
		observability.Cache().OnMiss(key)
	}
	return m, ok
}

// StoreManifest memoizes m under key and returns the retained manifest.
// If a manifest is already stored for key, the existing one is returned and
// m is discarded; concurrent lookups may both have read disk, but only one
// result is kept.
func (s *Session) StoreManifest(key string, m *manifest.Manifest) *manifest.Manifest {
	s.mu.Lock()
	existing, ok := s.manifests[key]
	if !ok {
		s.manifests[key] = m
	}
	s.mu.Unlock()

	if ok {
		return existing
	}
	observability.Cache().OnStore(key)
	return m
}

// Len reports the number of memoized manifests.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.manifests)
}

// Reset discards all memoized manifests and assigns a new session
// identifier. It is the isolation point between independent resolution runs
// and between tests sharing a session.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = uuid.NewString()
	s.manifests = make(map[string]*manifest.Manifest)
}
