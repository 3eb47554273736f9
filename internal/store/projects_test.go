package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskdeck/internal/models"
	"taskdeck/internal/storage"
)

func TestProjectsRemoveCascades(t *testing.T) {
	projects, tasks := newTestStores(t)
	ctx := context.Background()

	p1 := mustCreateProject(t, projects, models.CreateProject{Name: "P1"})
	p2 := mustCreateProject(t, projects, models.CreateProject{Name: "P2"})
	for range 3 {
		mustCreateTask(t, tasks, models.CreateTask{Label: "t", Priority: models.PriorityLow, ProjectID: p1.ID})
	}
	for range 2 {
		mustCreateTask(t, tasks, models.CreateTask{Label: "t", Priority: models.PriorityLow, ProjectID: p2.ID})
	}

	require.NoError(t, projects.Remove(ctx, p1.ID))

	assert.Len(t, projects.Items(), 1)
	assert.Empty(t, tasks.GetByProject(p1.ID), "no task may reference a removed project")
	assert.Len(t, tasks.GetByProject(p2.ID), 2)

	// The cascade reached the adapter, not just local state.
	require.NoError(t, tasks.FetchAll(ctx))
	assert.Len(t, tasks.Items(), 2)
}

func TestSetAsDefaultDemotesPreviousHolder(t *testing.T) {
	projects, _ := newTestStores(t)
	ctx := context.Background()

	a := mustCreateProject(t, projects, models.CreateProject{Name: "A", IsDefault: true})
	b := mustCreateProject(t, projects, models.CreateProject{Name: "B"})

	promoted, err := projects.SetAsDefault(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsDefault)

	defaults := 0
	for _, p := range projects.Items() {
		if p.IsDefault {
			defaults++
			assert.Equal(t, b.ID, p.ID)
		}
	}
	assert.Equal(t, 1, defaults, "at most one project is the default")
	assert.Equal(t, b.ID, projects.DefaultProjectID())

	// Promoting the current holder again is a no-op demotion-wise.
	_, err = projects.SetAsDefault(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, projects.DefaultProjectID())

	got, ok := projects.GetByID(a.ID)
	require.True(t, ok)
	assert.False(t, got.IsDefault)
}

func TestDefaultProjectAbsent(t *testing.T) {
	projects, _ := newTestStores(t)
	mustCreateProject(t, projects, models.CreateProject{Name: "plain"})

	assert.Nil(t, projects.DefaultProject())
	assert.Empty(t, projects.DefaultProjectID())
}

func TestProjectsSortedByDate(t *testing.T) {
	projects, _ := newTestStores(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, projects.SetAll(ctx, []models.Project{
		{ID: "old", Name: "old", CreatedAt: base},
		{ID: "new", Name: "new", CreatedAt: base.Add(48 * time.Hour)},
		{ID: "mid", Name: "mid", CreatedAt: base.Add(24 * time.Hour)},
	}))

	sorted := projects.SortedByDate()
	require.Len(t, sorted, 3)
	assert.Equal(t, "new", sorted[0].ID)
	assert.Equal(t, "mid", sorted[1].ID)
	assert.Equal(t, "old", sorted[2].ID)
}

func TestFetchAllFailureKeepsItems(t *testing.T) {
	dir := t.TempDir()
	logger := zap.NewNop()
	adapter := &flakyAdapter[models.Project, models.CreateProject, models.ProjectPatch]{
		Adapter: storage.NewLocal(storage.ProjectsDescriptor(), dir, logger),
	}
	tasks := NewTasks(storage.NewLocal(storage.TasksDescriptor(), dir, logger), logger)
	projects := NewProjects(adapter, tasks, logger)
	ctx := context.Background()

	mustCreateProject(t, projects, models.CreateProject{Name: "kept"})
	require.NoError(t, projects.FetchAll(ctx))
	require.Len(t, projects.Items(), 1)

	adapter.failGetAll(errors.New("disk on fire"))
	err := projects.FetchAll(ctx)
	require.Error(t, err)

	assert.Equal(t, "Failed to load projects", projects.Err())
	assert.False(t, projects.Loading(), "loading clears on the failure path too")
	assert.Len(t, projects.Items(), 1, "previous items survive a failed refresh")

	// A successful refresh clears the error.
	adapter.failGetAll(nil)
	require.NoError(t, projects.FetchAll(ctx))
	assert.Empty(t, projects.Err())
}

func TestSubscribeNotifiedOnChange(t *testing.T) {
	projects, _ := newTestStores(t)

	notified := 0
	projects.Subscribe(func() { notified++ })

	mustCreateProject(t, projects, models.CreateProject{Name: "P"})
	assert.Greater(t, notified, 0)
}
