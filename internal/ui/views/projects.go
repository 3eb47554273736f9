package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskdeck/internal/models"
	"taskdeck/internal/store"
	"taskdeck/internal/ui/keys"
	"taskdeck/internal/ui/styles"
)

type projectItem struct {
	project   models.Project
	taskCount int
}

func (i projectItem) Title() string { return i.project.Name }
func (i projectItem) Description() string {
	if i.project.IsDefault {
		return fmt.Sprintf("%d tasks · default", i.taskCount)
	}
	return fmt.Sprintf("%d tasks", i.taskCount)
}
func (i projectItem) FilterValue() string { return i.project.Name }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(p.Title()), descStyle.Render(p.Description()))
}

// SelectedProject is emitted when the user opens a project.
type SelectedProject struct {
	Project models.Project
}

// ProjectListView lists projects and handles create, delete (with
// cascade confirmation) and default selection.
type ProjectListView struct {
	projects *store.Projects
	tasks    *store.Tasks

	list     list.Model
	delegate *projectDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int

	creating bool
	newName  textinput.Model

	confirmingDelete bool
	deleteTarget     models.Project

	status string
}

// NewProjectListView builds the view on top of the stores.
func NewProjectListView(projects *store.Projects, tasks *store.Tasks) *ProjectListView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Project name"
	newName.CharLimit = 100

	delegate := &projectDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ProjectListView{
		projects: projects,
		tasks:    tasks,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		newName:  newName,
	}
}

func (v *ProjectListView) Init() tea.Cmd {
	v.Reload()
	return nil
}

// Reload rebuilds the list from store state. Called on store change
// notifications as well as after local actions.
func (v *ProjectListView) Reload() {
	projects := v.projects.SortedByDate()
	items := make([]list.Item, len(projects))
	for i, p := range projects {
		items[i] = projectItem{project: p, taskCount: v.tasks.CountByProject(p.ID)}
	}
	v.list.SetItems(items)
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.creating {
			return v.updateCreating(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.status = ""
			v.newName.Reset()
			v.newName.Focus()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.projects.Select(&item.project)
				return v, func() tea.Msg {
					return SelectedProject{Project: item.project}
				}
			}
		case key.Matches(msg, v.keys.Default):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				if _, err := v.projects.SetAsDefault(context.Background(), item.project.ID); err != nil {
					v.status = "Could not set default: " + err.Error()
				}
				v.Reload()
			}
			return v, nil
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.confirmingDelete = true
				v.deleteTarget = item.project
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if err := v.projects.Remove(context.Background(), v.deleteTarget.ID); err != nil {
			v.status = "Delete failed: " + err.Error()
		}
		v.confirmingDelete = false
		v.Reload()
		return v, nil
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *ProjectListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		name := strings.TrimSpace(v.newName.Value())
		if name == "" {
			return v, nil
		}
		if _, err := v.projects.Create(context.Background(), models.CreateProject{Name: name}); err != nil {
			v.status = "Create failed: " + err.Error()
		}
		v.creating = false
		v.Reload()
		return v, nil
	}

	var cmd tea.Cmd
	v.newName, cmd = v.newName.Update(msg)
	return v, cmd
}

func (v *ProjectListView) View() string {
	var b strings.Builder

	if v.confirmingDelete {
		count := v.tasks.CountByProject(v.deleteTarget.ID)
		b.WriteString(v.styles.Title.Render("Delete project?"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("  %q and its %d tasks will be deleted. (y/n)\n", v.deleteTarget.Name, count))
		return styles.CenterView(b.String(), v.width, v.height)
	}

	if v.creating {
		b.WriteString(v.styles.Title.Render("New project"))
		b.WriteString("\n\n")
		b.WriteString(v.styles.InputFocused.Render(v.newName.View()))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("enter save · esc cancel"))
		return styles.CenterView(b.String(), v.width, v.height)
	}

	b.WriteString(v.list.View())
	b.WriteString("\n")
	if err := v.projects.Err(); err != "" {
		b.WriteString(v.styles.ErrorBar.Render(err))
		b.WriteString("\n")
	}
	if v.status != "" {
		b.WriteString(v.styles.StatusBar.Render(v.status))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render("n new · enter open · * default · d delete · q quit"))
	return styles.CenterView(b.String(), v.width, v.height)
}
