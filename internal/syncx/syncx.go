// Package syncx provides the small synchronization primitives the session
// layer needs for cross-goroutine control: a value guard and an atomic flag.
package syncx

import (
	"sync"
	"sync/atomic"
)

// Guard wraps a value with a mutex so it can be read from a control goroutine
// while the stepping goroutine mutates it.
type Guard[T any] struct {
	mu    sync.RWMutex
	value T
}

// NewGuard creates a guarded value.
func NewGuard[T any](initial T) *Guard[T] {
	return &Guard[T]{value: initial}
}

// Get returns a copy of the value.
func (g *Guard[T]) Get() T {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.value
}

// Set atomically replaces the value.
func (g *Guard[T]) Set(v T) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.value = v
}

// Update executes fn while holding the write lock. fn receives a pointer for
// in-place mutation and returns a result made visible to the caller.
func (g *Guard[T]) Update(fn func(*T) any) any {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(&g.value)
}

// Flag is a set-once-per-use boolean signal with release/acquire visibility,
// written from one goroutine and consumed from another.
type Flag struct {
	v atomic.Bool
}

// Set raises the flag.
func (f *Flag) Set() { f.v.Store(true) }

// IsSet reports whether the flag is raised.
func (f *Flag) IsSet() bool { return f.v.Load() }

// TakeDown lowers the flag and reports whether it was raised.
func (f *Flag) TakeDown() bool { return f.v.Swap(false) }
