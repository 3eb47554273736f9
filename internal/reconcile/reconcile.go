// Package reconcile merges backend change events into the entity
// stores. Inserts are deduplicated by id against locally-originated
// creates; updates for unknown items are ignored; deletes drop the
// matching item.
package reconcile

import (
	"sync"

	"go.uber.org/zap"

	"taskdeck/internal/models"
	"taskdeck/internal/realtime"
	"taskdeck/internal/storage"
	"taskdeck/internal/store"
)

// Reconciler owns one realtime subscription per collection and applies
// incoming events to the stores.
type Reconciler struct {
	hub      *realtime.Hub
	projects *store.Projects
	tasks    *store.Tasks
	logger   *zap.Logger

	projectsDesc storage.Descriptor[models.Project, models.CreateProject, models.ProjectPatch]
	tasksDesc    storage.Descriptor[models.Task, models.CreateTask, models.TaskPatch]

	mu   sync.Mutex
	subs []*realtime.Subscription
	wg   sync.WaitGroup
}

// New returns a reconciler wired to the hub and both stores.
func New(hub *realtime.Hub, projects *store.Projects, tasks *store.Tasks, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		hub:          hub,
		projects:     projects,
		tasks:        tasks,
		logger:       logger,
		projectsDesc: storage.ProjectsDescriptor(),
		tasksDesc:    storage.TasksDescriptor(),
	}
}

// Subscribe opens one channel per collection and starts applying
// events. Calling while already subscribed is a logged no-op; exactly
// one subscription per collection may be active.
func (r *Reconciler) Subscribe() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.subs) > 0 {
		r.logger.Warn("reconciler already subscribed")
		return
	}
	projectsSub := r.hub.Subscribe(storage.ProjectsTable)
	tasksSub := r.hub.Subscribe(storage.TasksTable)
	r.subs = []*realtime.Subscription{projectsSub, tasksSub}
	r.wg.Add(2)
	go r.run(projectsSub, r.applyProject)
	go r.run(tasksSub, r.applyTask)
}

// Unsubscribe closes the channels and waits for the apply loops to
// drain. Safe to call when never subscribed or already unsubscribed.
func (r *Reconciler) Unsubscribe() {
	r.mu.Lock()
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()
	for _, sub := range subs {
		sub.Close()
	}
	r.wg.Wait()
}

func (r *Reconciler) run(sub *realtime.Subscription, apply func(realtime.Event)) {
	defer r.wg.Done()
	for ev := range sub.Events() {
		apply(ev)
	}
}

func (r *Reconciler) applyProject(ev realtime.Event) {
	switch ev.Type {
	case realtime.EventDelete:
		r.projects.ApplyDelete(ev.OldID)
	case realtime.EventInsert, realtime.EventUpdate:
		item, err := r.projectsDesc.FromFields(storage.FromBackendRow(ev.Row))
		if err != nil {
			r.logger.Warn("dropping undecodable project event",
				zap.String("event", string(ev.Type)), zap.Error(err))
			return
		}
		if ev.Type == realtime.EventInsert {
			r.projects.ApplyInsert(item)
		} else {
			r.projects.ApplyUpdate(item)
		}
	}
}

func (r *Reconciler) applyTask(ev realtime.Event) {
	switch ev.Type {
	case realtime.EventDelete:
		r.tasks.ApplyDelete(ev.OldID)
	case realtime.EventInsert, realtime.EventUpdate:
		item, err := r.tasksDesc.FromFields(storage.FromBackendRow(ev.Row))
		if err != nil {
			r.logger.Warn("dropping undecodable task event",
				zap.String("event", string(ev.Type)), zap.Error(err))
			return
		}
		if ev.Type == realtime.EventInsert {
			r.tasks.ApplyInsert(item)
		} else {
			r.tasks.ApplyUpdate(item)
		}
	}
}
