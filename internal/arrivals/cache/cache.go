// Package cache holds the last-known-good result for one feed.
//
// Each feed owns exactly one Cell. The refresh loop is the only writer;
// HTTP handlers read snapshots. A failed cycle only records its error,
// it never clears previously published data, so readers keep seeing
// stale-but-present predictions while upstream is down.
package cache

import (
	"sync"
	"time"
)

// Snapshot is the published state of one feed. UpdatedAt is nil only
// before the first successful cycle ever completes; Error is nil when
// the most recent cycle succeeded. Both can be set at once: the error
// then refers to the latest cycle, not to the data being served.
type Snapshot[T any] struct {
	UpdatedAt *time.Time `json:"updated_at"`
	Data      []T        `json:"data"`
	Error     *string    `json:"error"`
}

// Ready reports whether the snapshot can be served as data at all.
// A feed that has never succeeded and already holds an error is the
// only not-ready state.
func (s Snapshot[T]) Ready() bool {
	return s.UpdatedAt != nil || s.Error == nil
}

// Cell is a single-slot cache with whole-snapshot replacement. Readers
// never observe a partially written update.
type Cell[T any] struct {
	mu   sync.RWMutex
	snap Snapshot[T]
}

func NewCell[T any]() *Cell[T] {
	return &Cell[T]{
		snap: Snapshot[T]{Data: []T{}},
	}
}

// Publish replaces the cached data with the result of a successful
// cycle and clears any recorded error.
func (c *Cell[T]) Publish(items []T, at time.Time) {
	if items == nil {
		items = []T{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = Snapshot[T]{UpdatedAt: &at, Data: items}
}

// Fail records a failed cycle. Previously published data and its
// timestamp are kept untouched.
func (c *Cell[T]) Fail(err error) {
	msg := err.Error()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Error = &msg
}

// Snapshot returns the current state. The data slice is shared with
// the cell but is never mutated after publication.
func (c *Cell[T]) Snapshot() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}
