package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"taskdeck/internal/auth"
	"taskdeck/internal/models"
	"taskdeck/internal/realtime"
)

// Backend selects the persistence implementation.
type Backend string

const (
	BackendLocal  Backend = "local"
	BackendSQLite Backend = "sqlite"
)

// Factory maps each logical collection to its adapter for the
// configured backend. Adapters are constructed lazily and memoized;
// nothing outside this type knows which backend is active.
type Factory struct {
	backend  Backend
	dataDir  string
	hub      *realtime.Hub
	identity auth.Provider
	logger   *zap.Logger
	db       *sql.DB

	projectsOnce sync.Once
	projects     Adapter[models.Project, models.CreateProject, models.ProjectPatch]
	tasksOnce    sync.Once
	tasks        Adapter[models.Task, models.CreateTask, models.TaskPatch]
	settingsOnce sync.Once
	settings     Settings
}

// NewFactory prepares adapters for the given backend. For the sqlite
// backend the database is opened here; Close releases it.
func NewFactory(backend Backend, dataDir string, hub *realtime.Hub, identity auth.Provider, logger *zap.Logger) (*Factory, error) {
	f := &Factory{
		backend:  backend,
		dataDir:  dataDir,
		hub:      hub,
		identity: identity,
		logger:   logger,
	}
	switch backend {
	case BackendLocal:
	case BackendSQLite:
		db, err := Open(filepath.Join(dataDir, "taskdeck.db"))
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		f.db = db
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
	return f, nil
}

// Projects returns the adapter for the projects collection.
func (f *Factory) Projects() Adapter[models.Project, models.CreateProject, models.ProjectPatch] {
	f.projectsOnce.Do(func() {
		desc := ProjectsDescriptor()
		if f.backend == BackendSQLite {
			f.projects = NewSQLite(desc, f.db, f.hub, f.identity, f.logger)
			return
		}
		f.projects = NewLocal(desc, f.dataDir, f.logger)
	})
	return f.projects
}

// Tasks returns the adapter for the tasks collection.
func (f *Factory) Tasks() Adapter[models.Task, models.CreateTask, models.TaskPatch] {
	f.tasksOnce.Do(func() {
		desc := TasksDescriptor()
		if f.backend == BackendSQLite {
			f.tasks = NewSQLite(desc, f.db, f.hub, f.identity, f.logger)
			return
		}
		f.tasks = NewLocal(desc, f.dataDir, f.logger)
	})
	return f.tasks
}

// Settings returns the key/value settings store.
func (f *Factory) Settings() Settings {
	f.settingsOnce.Do(func() {
		if f.backend == BackendSQLite {
			f.settings = NewSQLiteSettings(f.db)
			return
		}
		f.settings = NewFileSettings(f.dataDir, f.logger)
	})
	return f.settings
}

// Close releases backend resources.
func (f *Factory) Close() error {
	if f.db != nil {
		return f.db.Close()
	}
	return nil
}
