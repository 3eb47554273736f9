package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Local persists a whole collection as one JSON array in one file under
// the data directory. When the file cannot be written (read-only
// volume, quota, permissions) it degrades to a process-lifetime memory
// buffer: writes keep succeeding from the caller's point of view, the
// failure is logged, and the data simply does not survive a restart.
type Local[T Entity, D, P any] struct {
	desc   Descriptor[T, D, P]
	path   string
	logger *zap.Logger

	mu       sync.Mutex
	fallback bool
	buffer   []T
}

// NewLocal returns a local adapter storing the collection under
// dir/<key>.json.
func NewLocal[T Entity, D, P any](desc Descriptor[T, D, P], dir string, logger *zap.Logger) *Local[T, D, P] {
	return &Local[T, D, P]{
		desc:   desc,
		path:   filepath.Join(dir, desc.Key+".json"),
		logger: logger,
	}
}

// load reads the collection. Corrupt or unreadable content degrades to
// an empty collection rather than an error.
func (a *Local[T, D, P]) load() []T {
	if a.fallback {
		return slices.Clone(a.buffer)
	}
	data, err := os.ReadFile(a.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		a.logger.Warn("local storage unavailable, using memory buffer",
			zap.String("key", a.desc.Key), zap.Error(err))
		a.fallback = true
		return slices.Clone(a.buffer)
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		a.logger.Warn("corrupt local collection treated as empty",
			zap.String("key", a.desc.Key), zap.Error(err))
		return nil
	}
	return items
}

func (a *Local[T, D, P]) save(items []T) {
	if a.fallback {
		a.buffer = items
		return
	}
	data, err := json.Marshal(items)
	if err == nil {
		err = os.WriteFile(a.path, data, 0644)
	}
	if err != nil {
		a.logger.Warn("local storage write failed, falling back to memory buffer",
			zap.String("key", a.desc.Key), zap.Error(err))
		a.fallback = true
		a.buffer = items
	}
}

// GetAll returns the collection in insertion order.
func (a *Local[T, D, P]) GetAll(ctx context.Context) ([]T, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.load(), nil
}

func (a *Local[T, D, P]) GetByID(ctx context.Context, id string) (*T, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, item := range a.load() {
		if item.EntityID() == id {
			return &item, nil
		}
	}
	return nil, nil
}

func (a *Local[T, D, P]) Create(ctx context.Context, draft D) (T, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	items := a.load()
	item := a.desc.Materialize(draft, uuid.NewString(), time.Now().UTC())
	a.save(append(items, item))
	return item, nil
}

func (a *Local[T, D, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	items := a.load()
	for i, item := range items {
		if item.EntityID() == id {
			items[i] = a.desc.Apply(item, patch)
			a.save(items)
			return items[i], nil
		}
	}
	var zero T
	return zero, fmt.Errorf("update %s %q: %w", a.desc.Key, id, ErrNotFound)
}

func (a *Local[T, D, P]) Delete(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	items := a.load()
	next := slices.DeleteFunc(items, func(item T) bool { return item.EntityID() == id })
	if len(next) == len(items) {
		a.logger.Debug("delete of missing item ignored",
			zap.String("key", a.desc.Key), zap.String("id", id))
		return nil
	}
	a.save(next)
	return nil
}

func (a *Local[T, D, P]) DeleteByField(ctx context.Context, field string, value any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	want := normalizeValue(value)
	items := a.load()
	next := items[:0]
	for _, item := range items {
		fields, err := entityFields(item)
		if err != nil {
			return err
		}
		if !reflect.DeepEqual(fields[field], want) {
			next = append(next, item)
		}
	}
	a.save(next)
	return nil
}

func (a *Local[T, D, P]) Clear(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.save([]T{})
	return nil
}

func (a *Local[T, D, P]) SetAll(ctx context.Context, items []T) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.save(slices.Clone(items))
	return nil
}
