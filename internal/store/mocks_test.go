package store

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"taskdeck/internal/models"
	"taskdeck/internal/storage"
)

// flakyAdapter wraps a real adapter with an injectable GetAll failure
// and a call counter.
type flakyAdapter[T storage.Entity, D, P any] struct {
	storage.Adapter[T, D, P]

	mu          sync.Mutex
	getAllErr   error
	getAllCalls int
}

func (f *flakyAdapter[T, D, P]) GetAll(ctx context.Context) ([]T, error) {
	f.mu.Lock()
	f.getAllCalls++
	err := f.getAllErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Adapter.GetAll(ctx)
}

func (f *flakyAdapter[T, D, P]) failGetAll(err error) {
	f.mu.Lock()
	f.getAllErr = err
	f.mu.Unlock()
}

func (f *flakyAdapter[T, D, P]) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getAllCalls
}

func newTestStores(t *testing.T) (*Projects, *Tasks) {
	t.Helper()
	dir := t.TempDir()
	logger := zap.NewNop()
	tasks := NewTasks(storage.NewLocal(storage.TasksDescriptor(), dir, logger), logger)
	projects := NewProjects(storage.NewLocal(storage.ProjectsDescriptor(), dir, logger), tasks, logger)
	return projects, tasks
}

func mustCreateProject(t *testing.T, s *Projects, draft models.CreateProject) models.Project {
	t.Helper()
	p, err := s.Create(context.Background(), draft)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return p
}

func mustCreateTask(t *testing.T, s *Tasks, draft models.CreateTask) models.Task {
	t.Helper()
	task, err := s.Create(context.Background(), draft)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}
