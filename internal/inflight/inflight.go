// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inflight tracks keys with work in progress so concurrent
// callers do not start duplicate generation for the same key.
package inflight

import "sync"

// Group is a set of in-flight keys. The zero value is not usable;
// construct with New.
type Group struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

// New returns an empty Group.
func New() *Group {
	return &Group{keys: make(map[string]struct{})}
}

// TryAcquire marks key as in flight. It reports false when the key is
// already held, in which case the caller must not start the work and
// must not call Release.
func (g *Group) TryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.keys[key]; held {
		return false
	}
	g.keys[key] = struct{}{}
	return true
}

// Release clears key. Releasing a key that is not held is a no-op.
func (g *Group) Release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
}

// Held reports whether key is currently in flight.
func (g *Group) Held(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, held := g.keys[key]
	return held
}
