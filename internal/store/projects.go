package store

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"taskdeck/internal/models"
	"taskdeck/internal/storage"
)

// Projects is the entity store for the projects collection.
type Projects struct {
	collection[models.Project, models.CreateProject, models.ProjectPatch]
	// tasks receives the cascade when a project is removed.
	tasks *Tasks
}

// NewProjects returns a projects store bound to its adapter. The tasks
// store is required so Remove can cascade.
func NewProjects(adapter storage.Adapter[models.Project, models.CreateProject, models.ProjectPatch], tasks *Tasks, logger *zap.Logger) *Projects {
	return &Projects{
		collection: collection[models.Project, models.CreateProject, models.ProjectPatch]{
			adapter:        adapter,
			logger:         logger,
			loadErrMessage: "Failed to load projects",
		},
		tasks: tasks,
	}
}

// SortedByDate returns projects newest-first.
func (s *Projects) SortedByDate() []models.Project {
	items := s.Items()
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

// DefaultProject returns the project marked as default, if any.
func (s *Projects) DefaultProject() *models.Project {
	for _, p := range s.Items() {
		if p.IsDefault {
			return &p
		}
	}
	return nil
}

// DefaultProjectID returns the default project's id, or "".
func (s *Projects) DefaultProjectID() string {
	if p := s.DefaultProject(); p != nil {
		return p.ID
	}
	return ""
}

// Remove deletes a project, cascading to its tasks first so that a
// failure between the two steps leaves orphaned tasks at worst, never a
// project with dangling references pointed at it.
func (s *Projects) Remove(ctx context.Context, id string) error {
	if err := s.tasks.RemoveByProject(ctx, id); err != nil {
		return err
	}
	return s.collection.Remove(ctx, id)
}

// SetAsDefault makes the given project the single default: the current
// holder is demoted first, then the target promoted. The two updates
// are sequential adapter calls, not a transaction; a failure in between
// can leave no default at all, which a retry repairs.
func (s *Projects) SetAsDefault(ctx context.Context, id string) (models.Project, error) {
	off, on := false, true
	if cur := s.DefaultProject(); cur != nil && cur.ID != id {
		if _, err := s.Update(ctx, cur.ID, models.ProjectPatch{IsDefault: &off}); err != nil {
			return models.Project{}, err
		}
	}
	return s.Update(ctx, id, models.ProjectPatch{IsDefault: &on})
}
