// Package session ties identity to store lifetime: when a user appears
// both collections are bulk-loaded and reconciliation starts; when the
// identity goes away reconciliation stops and the stores are reset.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"taskdeck/internal/auth"
	"taskdeck/internal/reconcile"
	"taskdeck/internal/store"
)

// Controller is a two-state machine (inactive/active) driven by the
// identity provider.
type Controller struct {
	identity   auth.Provider
	projects   *store.Projects
	tasks      *store.Tasks
	reconciler *reconcile.Reconciler
	logger     *zap.Logger

	mu sync.Mutex
	// initialized guards against re-entrant activation. An explicit flag
	// rather than a comparison with the previous identity: the same
	// identity reappearing after a transient nil must re-activate.
	initialized bool
}

// NewController wires the controller. Run must be called to start
// watching the identity provider.
func NewController(identity auth.Provider, projects *store.Projects, tasks *store.Tasks, reconciler *reconcile.Reconciler, logger *zap.Logger) *Controller {
	return &Controller{
		identity:   identity,
		projects:   projects,
		tasks:      tasks,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Run watches the identity provider until ctx is done or the provider
// closes its watch channel. Blocking; callers usually run it in a
// goroutine.
func (c *Controller) Run(ctx context.Context) {
	watch := c.identity.Watch()
	for {
		select {
		case <-ctx.Done():
			c.Deactivate()
			return
		case ident, ok := <-watch:
			if !ok {
				c.Deactivate()
				return
			}
			if ident != nil {
				c.Activate(ctx)
			} else {
				c.Deactivate()
			}
		}
	}
}

// Activate loads both collections concurrently and, once both fetches
// have settled, starts reconciliation. Re-entrant calls while already
// active are no-ops.
func (c *Controller) Activate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return
	}
	c.initialized = true

	var g errgroup.Group
	g.Go(func() error {
		if err := c.projects.FetchAll(ctx); err != nil {
			c.logger.Warn("initial projects load failed", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		if err := c.tasks.FetchAll(ctx); err != nil {
			c.logger.Warn("initial tasks load failed", zap.Error(err))
		}
		return nil
	})
	// Both fetches settle before reconciliation starts, so events never
	// merge into a not-yet-populated store.
	_ = g.Wait()

	c.reconciler.Subscribe()
	c.logger.Info("session active")
}

// Deactivate stops reconciliation and resets both stores. A no-op when
// already inactive.
func (c *Controller) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	c.initialized = false

	c.reconciler.Unsubscribe()
	c.projects.Reset()
	c.tasks.Reset()
	c.logger.Info("session inactive")
}

// Active reports whether a session is currently active.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}
