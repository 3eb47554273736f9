package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskdeck/internal/auth"
	"taskdeck/internal/models"
	"taskdeck/internal/realtime"
	"taskdeck/internal/reconcile"
	"taskdeck/internal/storage"
	"taskdeck/internal/store"
)

type fixture struct {
	identity   *auth.Memory
	hub        *realtime.Hub
	projects   *store.Projects
	tasks      *store.Tasks
	controller *Controller

	projectsAdapter storage.Adapter[models.Project, models.CreateProject, models.ProjectPatch]
	tasksAdapter    storage.Adapter[models.Task, models.CreateTask, models.TaskPatch]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	logger := zap.NewNop()
	hub := realtime.NewHub(logger)
	identity := auth.NewMemory()
	t.Cleanup(identity.Close)

	projectsAdapter := storage.NewLocal(storage.ProjectsDescriptor(), dir, logger)
	tasksAdapter := storage.NewLocal(storage.TasksDescriptor(), dir, logger)
	tasks := store.NewTasks(tasksAdapter, logger)
	projects := store.NewProjects(projectsAdapter, tasks, logger)
	reconciler := reconcile.New(hub, projects, tasks, logger)
	controller := NewController(identity, projects, tasks, reconciler, logger)
	t.Cleanup(controller.Deactivate)

	return &fixture{
		identity:        identity,
		hub:             hub,
		projects:        projects,
		tasks:           tasks,
		controller:      controller,
		projectsAdapter: projectsAdapter,
		tasksAdapter:    tasksAdapter,
	}
}

func (f *fixture) seedBackend(t *testing.T) models.Project {
	t.Helper()
	ctx := context.Background()
	project, err := f.projectsAdapter.Create(ctx, models.CreateProject{Name: "Seeded"})
	require.NoError(t, err)
	_, err = f.tasksAdapter.Create(ctx, models.CreateTask{Label: "seeded task", Priority: models.PriorityLow, ProjectID: project.ID})
	require.NoError(t, err)
	return project
}

func TestActivateLoadsAndSubscribes(t *testing.T) {
	f := newFixture(t)
	f.seedBackend(t)

	f.controller.Activate(context.Background())
	assert.True(t, f.controller.Active())

	// Activate blocks until both fetches settle.
	assert.Len(t, f.projects.Items(), 1)
	assert.Len(t, f.tasks.Items(), 1)

	// Reconciliation is live: a backend event lands in the store.
	f.hub.Publish(realtime.Event{
		Type:  realtime.EventInsert,
		Table: storage.ProjectsTable,
		Row: map[string]any{
			"id":         "remote",
			"name":       "Remote",
			"is_default": false,
			"created_at": time.Now().UTC().Format(time.RFC3339Nano),
		},
	})
	require.Eventually(t, func() bool {
		return len(f.projects.Items()) == 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestActivateReentrantGuard(t *testing.T) {
	f := newFixture(t)
	f.seedBackend(t)
	ctx := context.Background()

	f.controller.Activate(ctx)
	require.NotPanics(t, func() { f.controller.Activate(ctx) })
	assert.True(t, f.controller.Active())
	assert.Len(t, f.projects.Items(), 1)
}

func TestDeactivateResetsStores(t *testing.T) {
	f := newFixture(t)
	f.seedBackend(t)

	f.controller.Activate(context.Background())
	require.NotEmpty(t, f.projects.Items())

	f.controller.Deactivate()
	assert.False(t, f.controller.Active())
	assert.Empty(t, f.projects.Items())
	assert.Empty(t, f.tasks.Items())

	// Events no longer reach the stores.
	f.hub.Publish(realtime.Event{
		Type:  realtime.EventInsert,
		Table: storage.ProjectsTable,
		Row: map[string]any{
			"id": "late", "name": "Late", "is_default": false,
			"created_at": time.Now().UTC().Format(time.RFC3339Nano),
		},
	})
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, f.projects.Items())

	require.NotPanics(t, f.controller.Deactivate, "deactivating twice is a no-op")
}

func TestRunFollowsIdentity(t *testing.T) {
	f := newFixture(t)
	f.seedBackend(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		f.controller.Run(ctx)
		close(done)
	}()

	f.identity.SignIn(auth.Identity{UserID: "u1"})
	require.Eventually(t, f.controller.Active, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		return len(f.projects.Items()) == 1
	}, 2*time.Second, 5*time.Millisecond)

	f.identity.SignOut()
	require.Eventually(t, func() bool {
		return !f.controller.Active()
	}, 2*time.Second, 5*time.Millisecond)
	assert.Empty(t, f.projects.Items())

	// The same identity reappearing after a transient nil re-activates.
	f.identity.SignIn(auth.Identity{UserID: "u1"})
	require.Eventually(t, f.controller.Active, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
	assert.False(t, f.controller.Active())
}
