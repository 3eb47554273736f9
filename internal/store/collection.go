// Package store holds the in-memory authoritative copy of each
// collection. Stores mutate optimistically through their adapter and
// notify subscribers after every state change; derived views are plain
// functions recomputed on read.
package store

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"taskdeck/internal/storage"
)

// collection is the state and behavior shared by every entity store.
// The backing slice is owned exclusively by the store; all external
// mutation goes through its methods.
type collection[T storage.Entity, D, P any] struct {
	adapter storage.Adapter[T, D, P]
	logger  *zap.Logger
	// loadErrMessage is the user-facing error set when FetchAll fails.
	loadErrMessage string

	mu       sync.RWMutex
	items    []T
	selected *T
	loading  bool
	err      string
	watchers []func()
}

// Subscribe registers fn to run after every state change. Used by the
// UI to re-render when either a local action or a reconciled remote
// event mutates the store.
func (c *collection[T, D, P]) Subscribe(fn func()) {
	c.mu.Lock()
	c.watchers = append(c.watchers, fn)
	c.mu.Unlock()
}

func (c *collection[T, D, P]) notify() {
	c.mu.RLock()
	watchers := slices.Clone(c.watchers)
	c.mu.RUnlock()
	for _, fn := range watchers {
		fn()
	}
}

// Items returns a snapshot of the collection.
func (c *collection[T, D, P]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Loading reports whether a FetchAll is in flight.
func (c *collection[T, D, P]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err returns the user-facing load error, or "".
func (c *collection[T, D, P]) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// GetByID returns the local item with the given id, if present.
func (c *collection[T, D, P]) GetByID(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if item.EntityID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Select sets the local selection. Pass nil to clear it.
func (c *collection[T, D, P]) Select(item *T) {
	c.mu.Lock()
	c.selected = item
	c.mu.Unlock()
	c.notify()
}

// Selected returns the current selection, or nil.
func (c *collection[T, D, P]) Selected() *T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

// FetchAll replaces the collection with the adapter's contents. On
// failure the previous items are kept and a user-facing error string is
// set; the error is also returned for callers that want to log it.
// Loading is cleared on every path.
func (c *collection[T, D, P]) FetchAll(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.err = ""
	c.mu.Unlock()
	c.notify()

	items, err := c.adapter.GetAll(ctx)

	c.mu.Lock()
	c.loading = false
	if err != nil {
		c.err = c.loadErrMessage
	} else {
		c.items = items
	}
	c.mu.Unlock()
	c.notify()
	return err
}

// Create persists through the adapter and appends the returned
// canonical object. Adapter failures propagate to the caller untouched.
func (c *collection[T, D, P]) Create(ctx context.Context, draft D) (T, error) {
	item, err := c.adapter.Create(ctx, draft)
	if err != nil {
		var zero T
		return zero, err
	}
	c.mu.Lock()
	// The echoed INSERT event can occasionally land before this append;
	// both paths check for the id so neither produces a duplicate.
	if !c.containsLocked(item.EntityID()) {
		c.items = append(c.items, item)
	}
	c.mu.Unlock()
	c.notify()
	return item, nil
}

// Update persists through the adapter and replaces the matching local
// item. If the id is no longer in local state the result is dropped
// rather than inserted.
func (c *collection[T, D, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	updated, err := c.adapter.Update(ctx, id, patch)
	if err != nil {
		var zero T
		return zero, err
	}
	c.mu.Lock()
	for i, item := range c.items {
		if item.EntityID() == id {
			c.items[i] = updated
			break
		}
	}
	c.mu.Unlock()
	c.notify()
	return updated, nil
}

// Remove deletes through the adapter first, then drops the local item.
func (c *collection[T, D, P]) Remove(ctx context.Context, id string) error {
	if err := c.adapter.Delete(ctx, id); err != nil {
		return err
	}
	c.mu.Lock()
	c.items = slices.DeleteFunc(c.items, func(item T) bool { return item.EntityID() == id })
	c.mu.Unlock()
	c.notify()
	return nil
}

// Clear empties the backing collection and the local mirror.
func (c *collection[T, D, P]) Clear(ctx context.Context) error {
	if err := c.adapter.Clear(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
	c.notify()
	return nil
}

// SetAll replaces the backing collection and the local mirror.
func (c *collection[T, D, P]) SetAll(ctx context.Context, items []T) error {
	if err := c.adapter.SetAll(ctx, items); err != nil {
		return err
	}
	c.mu.Lock()
	c.items = slices.Clone(items)
	c.mu.Unlock()
	c.notify()
	return nil
}

// Reset returns the store to its just-constructed state. Used on
// session teardown; nothing is persisted.
func (c *collection[T, D, P]) Reset() {
	c.mu.Lock()
	c.items = nil
	c.selected = nil
	c.loading = false
	c.err = ""
	c.mu.Unlock()
	c.notify()
}

// ApplyInsert merges a remote-origin insert. An item already present
// locally (our own echoed create) is left alone.
func (c *collection[T, D, P]) ApplyInsert(item T) {
	c.mu.Lock()
	if c.containsLocked(item.EntityID()) {
		c.mu.Unlock()
		return
	}
	c.items = append([]T{item}, c.items...)
	c.mu.Unlock()
	c.notify()
}

// ApplyUpdate merges a remote-origin update. Unknown ids are ignored.
func (c *collection[T, D, P]) ApplyUpdate(item T) {
	c.mu.Lock()
	replaced := false
	for i, existing := range c.items {
		if existing.EntityID() == item.EntityID() {
			c.items[i] = item
			replaced = true
			break
		}
	}
	c.mu.Unlock()
	if replaced {
		c.notify()
	}
}

// ApplyDelete merges a remote-origin delete.
func (c *collection[T, D, P]) ApplyDelete(id string) {
	c.mu.Lock()
	before := len(c.items)
	c.items = slices.DeleteFunc(c.items, func(item T) bool { return item.EntityID() == id })
	changed := len(c.items) != before
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

func (c *collection[T, D, P]) containsLocked(id string) bool {
	for _, item := range c.items {
		if item.EntityID() == id {
			return true
		}
	}
	return false
}
