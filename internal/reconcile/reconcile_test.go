package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskdeck/internal/models"
	"taskdeck/internal/realtime"
	"taskdeck/internal/storage"
	"taskdeck/internal/store"
)

type fixture struct {
	hub        *realtime.Hub
	projects   *store.Projects
	tasks      *store.Tasks
	reconciler *Reconciler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	logger := zap.NewNop()
	hub := realtime.NewHub(logger)
	tasks := store.NewTasks(storage.NewLocal(storage.TasksDescriptor(), dir, logger), logger)
	projects := store.NewProjects(storage.NewLocal(storage.ProjectsDescriptor(), dir, logger), tasks, logger)
	r := New(hub, projects, tasks, logger)
	t.Cleanup(r.Unsubscribe)
	return &fixture{hub: hub, projects: projects, tasks: tasks, reconciler: r}
}

func projectRow(id, name string) map[string]any {
	return map[string]any{
		"id":         id,
		"name":       name,
		"is_default": false,
		"user_id":    "remote-user",
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
}

func taskRow(id, label, projectID string) map[string]any {
	return map[string]any{
		"id":           id,
		"label":        label,
		"description":  "",
		"due_date":     nil,
		"priority":     "medium",
		"project_id":   projectID,
		"completed_at": nil,
		"user_id":      "remote-user",
		"created_at":   time.Now().UTC().Format(time.RFC3339Nano),
	}
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond, msg)
}

func TestInsertEventAddsItem(t *testing.T) {
	f := newFixture(t)
	f.reconciler.Subscribe()

	f.hub.Publish(realtime.Event{
		Type:  realtime.EventInsert,
		Table: storage.ProjectsTable,
		Row:   projectRow("p1", "Remote project"),
	})

	eventually(t, func() bool { return len(f.projects.Items()) == 1 }, "insert should land in the store")
	got, ok := f.projects.GetByID("p1")
	require.True(t, ok)
	assert.Equal(t, "Remote project", got.Name)
}

func TestInsertEventDeduplicatesOwnCreate(t *testing.T) {
	f := newFixture(t)
	f.reconciler.Subscribe()

	created, err := f.projects.Create(context.Background(), models.CreateProject{Name: "Mine"})
	require.NoError(t, err)

	// The backend echoes the create back as an insert event.
	f.hub.Publish(realtime.Event{
		Type:  realtime.EventInsert,
		Table: storage.ProjectsTable,
		Row:   projectRow(created.ID, "Mine"),
	})
	// A genuinely new item still lands, which also proves the echo above
	// was processed.
	f.hub.Publish(realtime.Event{
		Type:  realtime.EventInsert,
		Table: storage.ProjectsTable,
		Row:   projectRow("other", "Theirs"),
	})

	eventually(t, func() bool { return len(f.projects.Items()) == 2 }, "echo must not duplicate")
}

func TestUpdateEventForUnknownItemIgnored(t *testing.T) {
	f := newFixture(t)
	f.reconciler.Subscribe()

	f.hub.Publish(realtime.Event{
		Type:  realtime.EventUpdate,
		Table: storage.TasksTable,
		Row:   taskRow("ghost", "never seen", "p1"),
	})
	f.hub.Publish(realtime.Event{
		Type:  realtime.EventInsert,
		Table: storage.TasksTable,
		Row:   taskRow("t1", "real", "p1"),
	})

	eventually(t, func() bool { return len(f.tasks.Items()) == 1 }, "only the insert should land")
	_, ok := f.tasks.GetByID("ghost")
	assert.False(t, ok)
}

func TestUpdateEventReplacesItem(t *testing.T) {
	f := newFixture(t)
	f.reconciler.Subscribe()

	f.hub.Publish(realtime.Event{
		Type:  realtime.EventInsert,
		Table: storage.TasksTable,
		Row:   taskRow("t1", "before", "p1"),
	})
	eventually(t, func() bool { return len(f.tasks.Items()) == 1 }, "insert should land")

	f.hub.Publish(realtime.Event{
		Type:  realtime.EventUpdate,
		Table: storage.TasksTable,
		Row:   taskRow("t1", "after", "p1"),
	})
	eventually(t, func() bool {
		got, ok := f.tasks.GetByID("t1")
		return ok && got.Label == "after"
	}, "update should replace the item")
	assert.Len(t, f.tasks.Items(), 1)
}

func TestDeleteEventRemovesItem(t *testing.T) {
	f := newFixture(t)
	f.reconciler.Subscribe()

	f.hub.Publish(realtime.Event{
		Type:  realtime.EventInsert,
		Table: storage.TasksTable,
		Row:   taskRow("t1", "doomed", "p1"),
	})
	eventually(t, func() bool { return len(f.tasks.Items()) == 1 }, "insert should land")

	f.hub.Publish(realtime.Event{
		Type:  realtime.EventDelete,
		Table: storage.TasksTable,
		OldID: "t1",
	})
	eventually(t, func() bool { return len(f.tasks.Items()) == 0 }, "delete should drop the item")
}

func TestUndecodableEventDropped(t *testing.T) {
	f := newFixture(t)
	f.reconciler.Subscribe()

	f.hub.Publish(realtime.Event{
		Type:  realtime.EventInsert,
		Table: storage.ProjectsTable,
		Row:   map[string]any{"id": "bad", "created_at": "not a timestamp"},
	})
	f.hub.Publish(realtime.Event{
		Type:  realtime.EventInsert,
		Table: storage.ProjectsTable,
		Row:   projectRow("good", "ok"),
	})

	eventually(t, func() bool { return len(f.projects.Items()) == 1 }, "bad event is dropped, good one lands")
	_, ok := f.projects.GetByID("bad")
	assert.False(t, ok)
}

func TestSubscribeTwiceIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.reconciler.Subscribe()
	f.reconciler.Subscribe()

	f.hub.Publish(realtime.Event{
		Type:  realtime.EventInsert,
		Table: storage.ProjectsTable,
		Row:   projectRow("p1", "once"),
	})
	eventually(t, func() bool { return len(f.projects.Items()) == 1 }, "insert should land exactly once")
}

func TestUnsubscribeIdempotent(t *testing.T) {
	f := newFixture(t)

	require.NotPanics(t, f.reconciler.Unsubscribe, "unsubscribe before subscribe is safe")

	f.reconciler.Subscribe()
	f.reconciler.Unsubscribe()
	require.NotPanics(t, f.reconciler.Unsubscribe)

	// After unsubscribing, events no longer reach the stores.
	f.hub.Publish(realtime.Event{
		Type:  realtime.EventInsert,
		Table: storage.ProjectsTable,
		Row:   projectRow("p1", "late"),
	})
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, f.projects.Items())

	// And subscribing again works.
	f.reconciler.Subscribe()
	f.hub.Publish(realtime.Event{
		Type:  realtime.EventInsert,
		Table: storage.ProjectsTable,
		Row:   projectRow("p2", "fresh"),
	})
	eventually(t, func() bool { return len(f.projects.Items()) == 1 }, "resubscribe should work")
}
