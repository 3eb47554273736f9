package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/models"
	"taskdeck/internal/storage"
	"taskdeck/internal/store"
	"taskdeck/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewProjects View = iota
	ViewTasks
)

// StoreChangedMsg is sent into the program whenever a store notifies
// its subscribers, so remote-origin changes re-render without a
// keypress.
type StoreChangedMsg struct{}

type App struct {
	projects    *store.Projects
	tasks       *store.Tasks
	settings    storage.Settings
	currentView View
	projectList *views.ProjectListView
	taskList    *views.TaskListView
	width       int
	height      int
}

// NewApp creates the application model on top of the stores.
func NewApp(projects *store.Projects, tasks *store.Tasks, settings storage.Settings) *App {
	return &App{
		projects:    projects,
		tasks:       tasks,
		settings:    settings,
		currentView: ViewProjects,
		projectList: views.NewProjectListView(projects, tasks),
	}
}

func (a *App) Init() tea.Cmd {
	// Reopen the last viewed project if it still exists.
	lastProjectID, err := a.settings.Get(context.Background(), "last_project_id")
	if err == nil && lastProjectID != "" {
		if project, ok := a.projects.GetByID(lastProjectID); ok {
			return a.openProject(project)
		}
	}
	return a.projectList.Init()
}

func (a *App) openProject(project models.Project) tea.Cmd {
	a.currentView = ViewTasks
	a.taskList = views.NewTaskListView(a.tasks, project)

	a.settings.Set(context.Background(), "last_project_id", project.ID)

	return tea.Batch(
		a.taskList.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Always update project list size since it persists
		a.projectList.Update(msg)

	case StoreChangedMsg:
		a.projectList.Reload()
		if a.taskList != nil {
			a.taskList.Reload()
		}
		return a, nil

	case views.SelectedProject:
		return a, a.openProject(msg.Project)

	case views.BackToProjects:
		a.currentView = ViewProjects
		a.projects.Select(nil)
		a.settings.Set(context.Background(), "last_project_id", "")
		return a, tea.Batch(
			a.projectList.Init(),
			func() tea.Msg {
				return tea.WindowSizeMsg{Width: a.width, Height: a.height}
			},
		)
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewProjects:
		_, cmd = a.projectList.Update(msg)
	case ViewTasks:
		_, cmd = a.taskList.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewTasks:
		if a.taskList != nil {
			return a.taskList.View()
		}
	}
	return a.projectList.View()
}
