// Package tracker holds the in-memory set of queue keys a process believes are outstanding.
package tracker

import (
	"slices"
	"sync"
)

// Tracker is the set of queue keys believed to represent outstanding work.
//
// It is a cache in front of the durable queue, not a ledger: it is never
// persisted and can always be rebuilt with Replace from the queue contents.
// The set over-approximates outstanding work; keys leave it only through an
// explicit Remove.
//
// Tracker is safe for concurrent use. Mutations normally come from a single
// scheduler goroutine while diagnostics read snapshots concurrently.
type Tracker struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{keys: make(map[string]struct{})}
}

// Contains reports whether key is tracked.
func (t *Tracker) Contains(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.keys[key]

	return ok
}

// Add tracks key. Adding a tracked key is a no-op.
//
// Returns:
//   - bool: true if the key was not tracked before
func (t *Tracker) Add(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.keys[key]; ok {
		return false
	}
	t.keys[key] = struct{}{}

	return true
}

// Remove stops tracking key.
//
// Returns:
//   - bool: true if the key was tracked
func (t *Tracker) Remove(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.keys[key]; !ok {
		return false
	}
	delete(t.keys, key)

	return true
}

// Replace atomically swaps the tracked set for exactly the given keys.
// Duplicates in keys are collapsed.
func (t *Tracker) Replace(keys []string) {
	next := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		next[k] = struct{}{}
	}

	t.mu.Lock()
	t.keys = next
	t.mu.Unlock()
}

// Snapshot returns a sorted copy of the tracked keys.
//
// The copy is safe to iterate while the tracker is being mutated.
func (t *Tracker) Snapshot() []string {
	t.mu.RLock()
	out := make([]string, 0, len(t.keys))
	for k := range t.keys {
		out = append(out, k)
	}
	t.mu.RUnlock()

	slices.Sort(out)

	return out
}

// Len returns the number of tracked keys.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.keys)
}
