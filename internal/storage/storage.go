// Package storage defines the persistence contract every backend
// implements, plus the two concrete backends: a local JSON-file store
// (the offline mode) and a sqlite database (the shared mode, which also
// feeds the realtime hub).
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Update when the id does not exist.
	// Delete of a missing id is a logged no-op, not an error.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated is returned by backends that scope writes to a
	// user when no identity is available.
	ErrUnauthenticated = errors.New("not authenticated")
)

// Entity is anything an adapter can persist.
type Entity interface {
	EntityID() string
}

// Adapter is the uniform CRUD contract over one collection. T is the
// stored entity, D the creation payload (T minus id and createdAt), P
// the partial-update payload.
//
// GetAll's ordering is backend-defined: the sqlite backend returns
// newest-first, the local backend preserves insertion order. Callers
// re-sort as needed.
type Adapter[T Entity, D, P any] interface {
	GetAll(ctx context.Context) ([]T, error)
	// GetByID returns (nil, nil) when the id is absent.
	GetByID(ctx context.Context, id string) (*T, error)
	// Create assigns the id and creation timestamp and returns the
	// canonical stored object.
	Create(ctx context.Context, draft D) (T, error)
	// Update applies a partial patch. The stored id and createdAt are
	// always preserved. Returns ErrNotFound when the id is absent.
	Update(ctx context.Context, id string, patch P) (T, error)
	// Delete is idempotent; a missing id is a no-op.
	Delete(ctx context.Context, id string) error
	// DeleteByField bulk-deletes every row whose field matches value.
	// The field name uses the entity naming convention (camelCase).
	DeleteByField(ctx context.Context, field string, value any) error
	Clear(ctx context.Context) error
	// SetAll replaces the collection contents. Implemented as
	// clear-then-insert on backends without an atomic replace.
	SetAll(ctx context.Context, items []T) error
}

// Descriptor binds one collection's types to the storage layer: its
// local key, its backend table, and the handful of operations the
// generic adapters cannot derive on their own. Both backends share the
// same descriptor, so id and timestamp assignment behave identically.
type Descriptor[T Entity, D, P any] struct {
	// Key names the collection in the local backend (one file per key).
	Key string
	// Table names the collection in the database backend.
	Table string
	// Materialize builds the stored entity from a creation payload plus
	// the backend-assigned identity fields.
	Materialize func(draft D, id string, createdAt time.Time) T
	// Apply merges a patch into an existing entity, preserving its
	// identity fields.
	Apply func(item T, patch P) T
	// PatchFields lists the set patch fields keyed by entity field name.
	PatchFields func(patch P) map[string]any
	// FromFields decodes an entity from a field map in entity naming
	// convention, as produced by FromBackendRow.
	FromFields func(fields map[string]any) (T, error)
}
