package store

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"taskdeck/internal/models"
	"taskdeck/internal/storage"
)

// TaskFilters narrows the task views. Zero values mean "no filter".
// Search is a case-insensitive substring match against label and
// description.
type TaskFilters struct {
	ProjectID string
	Priority  models.Priority
	Search    string
}

// TaskFilterPatch applies a partial filter change; nil fields are left
// as they are.
type TaskFilterPatch struct {
	ProjectID *string
	Priority  *models.Priority
	Search    *string
}

// Tasks is the entity store for the tasks collection.
type Tasks struct {
	collection[models.Task, models.CreateTask, models.TaskPatch]

	filterMu sync.RWMutex
	filters  TaskFilters
}

// NewTasks returns a tasks store bound to its adapter.
func NewTasks(adapter storage.Adapter[models.Task, models.CreateTask, models.TaskPatch], logger *zap.Logger) *Tasks {
	return &Tasks{
		collection: collection[models.Task, models.CreateTask, models.TaskPatch]{
			adapter:        adapter,
			logger:         logger,
			loadErrMessage: "Failed to load tasks",
		},
	}
}

// Filters returns the active filter state.
func (s *Tasks) Filters() TaskFilters {
	s.filterMu.RLock()
	defer s.filterMu.RUnlock()
	return s.filters
}

// SetFilters merges a partial filter change.
func (s *Tasks) SetFilters(patch TaskFilterPatch) {
	s.filterMu.Lock()
	if patch.ProjectID != nil {
		s.filters.ProjectID = *patch.ProjectID
	}
	if patch.Priority != nil {
		s.filters.Priority = *patch.Priority
	}
	if patch.Search != nil {
		s.filters.Search = *patch.Search
	}
	s.filterMu.Unlock()
	s.notify()
}

// ResetFilters clears all filters.
func (s *Tasks) ResetFilters() {
	s.filterMu.Lock()
	s.filters = TaskFilters{}
	s.filterMu.Unlock()
	s.notify()
}

// Filtered returns the tasks matching every active filter.
func (s *Tasks) Filtered() []models.Task {
	filters := s.Filters()
	search := strings.ToLower(filters.Search)
	var out []models.Task
	for _, t := range s.Items() {
		if filters.ProjectID != "" && t.ProjectID != filters.ProjectID {
			continue
		}
		if filters.Priority != "" && t.Priority != filters.Priority {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Label), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Pending returns the filtered tasks that are not completed.
func (s *Tasks) Pending() []models.Task {
	return partition(s.Filtered(), false)
}

// Completed returns the filtered tasks that are completed.
func (s *Tasks) Completed() []models.Task {
	return partition(s.Filtered(), true)
}

// SortedByDueDate returns pending tasks ascending by due date (tasks
// without one last), followed by completed tasks descending by
// completion date.
func (s *Tasks) SortedByDueDate() []models.Task {
	pending := s.Pending()
	sort.SliceStable(pending, func(i, j int) bool {
		a, b := pending[i].DueDate, pending[j].DueDate
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	completed := s.Completed()
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].CompletedAt.After(*completed[j].CompletedAt)
	})
	return append(pending, completed...)
}

// GetByProject returns every task belonging to a project, unfiltered.
func (s *Tasks) GetByProject(projectID string) []models.Task {
	var out []models.Task
	for _, t := range s.Items() {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out
}

// CountByProject returns the number of tasks in a project, unfiltered.
func (s *Tasks) CountByProject(projectID string) int {
	n := 0
	for _, t := range s.Items() {
		if t.ProjectID == projectID {
			n++
		}
	}
	return n
}

// Complete marks a task done now.
func (s *Tasks) Complete(ctx context.Context, id string) (models.Task, error) {
	now := time.Now().UTC()
	return s.Update(ctx, id, models.TaskPatch{CompletedAt: models.Some(&now)})
}

// Uncomplete returns a task to pending.
func (s *Tasks) Uncomplete(ctx context.Context, id string) (models.Task, error) {
	return s.Update(ctx, id, models.TaskPatch{CompletedAt: models.Some[*time.Time](nil)})
}

// RemoveByProject deletes every task belonging to a project. Called by
// the projects store as the first half of a cascade delete.
func (s *Tasks) RemoveByProject(ctx context.Context, projectID string) error {
	if err := s.adapter.DeleteByField(ctx, "projectId", projectID); err != nil {
		return err
	}
	s.mu.Lock()
	s.items = slices.DeleteFunc(s.items, func(t models.Task) bool { return t.ProjectID == projectID })
	s.mu.Unlock()
	s.notify()
	return nil
}

// Reset clears state and filters.
func (s *Tasks) Reset() {
	s.filterMu.Lock()
	s.filters = TaskFilters{}
	s.filterMu.Unlock()
	s.collection.Reset()
}

func partition(tasks []models.Task, completed bool) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if t.Completed() == completed {
			out = append(out, t)
		}
	}
	return out
}
