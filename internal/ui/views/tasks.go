package views

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskdeck/internal/dates"
	"taskdeck/internal/models"
	"taskdeck/internal/store"
	"taskdeck/internal/ui/keys"
	"taskdeck/internal/ui/styles"
)

// BackToProjects is emitted when the user leaves the task list.
type BackToProjects struct{}

type taskItem struct {
	task models.Task
}

func (i taskItem) Title() string       { return i.task.Label }
func (i taskItem) Description() string { return i.task.Description }
func (i taskItem) FilterValue() string { return i.task.Label }

type taskDelegate struct {
	styles *styles.Styles
	width  int
}

func (d taskDelegate) Height() int                               { return 1 }
func (d taskDelegate) Spacing() int                              { return 0 }
func (d taskDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	t, ok := item.(taskItem)
	if !ok {
		return
	}

	check := "[ ]"
	label := t.task.Label

	due := ""
	if t.task.DueDate != nil {
		due = t.task.DueDate.Format("Jan 02")
		if !t.task.Completed() && t.task.DueDate.Before(time.Now()) {
			due = d.styles.Overdue.Render(due)
		}
	}
	initial := "-"
	if p := string(t.task.Priority); p != "" {
		initial = strings.ToUpper(p[:1])
	}
	prio := d.styles.Priority(t.task.Priority).Render(initial)

	if t.task.Completed() {
		check = "[x]"
		label = d.styles.Done.Render(label)
	}
	line := fmt.Sprintf("%s %s %s  %s", check, prio, label, due)

	if index == m.Index() {
		fmt.Fprint(w, d.styles.ListSelected.Width(max(d.width-4, 20)).Render(line))
		return
	}
	fmt.Fprint(w, d.styles.ListItem.Width(max(d.width-4, 20)).Render(line))
}

// TaskListView shows one project's tasks sorted by due date, with
// quick-add, search and priority filtering.
type TaskListView struct {
	tasks   *store.Tasks
	project models.Project

	list     list.Model
	delegate *taskDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int

	adding     bool
	addLabel   textinput.Model
	addPrio    models.Priority
	addDueIdx  int // index into due presets; 0 means no due date
	duePresets []dates.Preset

	searching   bool
	searchInput textinput.Model

	status string
}

// NewTaskListView builds the view for one project. The store's project
// filter is pinned to the project for the lifetime of the view.
func NewTaskListView(tasks *store.Tasks, project models.Project) *TaskListView {
	s := styles.NewStyles()

	addLabel := textinput.New()
	addLabel.Placeholder = "Task label"
	addLabel.CharLimit = 200

	searchInput := textinput.New()
	searchInput.Placeholder = "Search label or description..."
	searchInput.CharLimit = 100

	delegate := &taskDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = project.Name
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	pid := project.ID
	tasks.SetFilters(store.TaskFilterPatch{ProjectID: &pid})

	return &TaskListView{
		tasks:       tasks,
		project:     project,
		list:        l,
		delegate:    delegate,
		styles:      s,
		keys:        keys.DefaultKeyMap(),
		addLabel:    addLabel,
		addPrio:     models.PriorityMedium,
		duePresets:  dates.SimplePresets(time.Now()),
		searchInput: searchInput,
	}
}

func (v *TaskListView) Init() tea.Cmd {
	v.Reload()
	return nil
}

// Reload rebuilds the list from store state.
func (v *TaskListView) Reload() {
	tasks := v.tasks.SortedByDueDate()
	items := make([]list.Item, len(tasks))
	for i, t := range tasks {
		items[i] = taskItem{task: t}
	}
	v.list.SetItems(items)
}

func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-8)
		return v, nil

	case tea.KeyMsg:
		if v.adding {
			return v.updateAdding(msg)
		}
		if v.searching {
			return v.updateSearching(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back):
			v.tasks.ResetFilters()
			return v, func() tea.Msg { return BackToProjects{} }
		case key.Matches(msg, v.keys.New):
			v.adding = true
			v.status = ""
			v.addLabel.Reset()
			v.addLabel.Focus()
			v.addPrio = models.PriorityMedium
			v.addDueIdx = 0
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Toggle):
			if item, ok := v.list.SelectedItem().(taskItem); ok {
				v.toggle(item.task)
				v.Reload()
			}
			return v, nil
		case key.Matches(msg, v.keys.Search):
			v.searching = true
			v.searchInput.SetValue(v.tasks.Filters().Search)
			v.searchInput.Focus()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Priority):
			v.cyclePriorityFilter()
			v.Reload()
			return v, nil
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(taskItem); ok {
				if err := v.tasks.Remove(context.Background(), item.task.ID); err != nil {
					v.status = "Delete failed: " + err.Error()
				}
				v.Reload()
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *TaskListView) toggle(t models.Task) {
	ctx := context.Background()
	var err error
	if t.Completed() {
		_, err = v.tasks.Uncomplete(ctx, t.ID)
	} else {
		_, err = v.tasks.Complete(ctx, t.ID)
	}
	if err != nil {
		v.status = "Update failed: " + err.Error()
	}
}

func (v *TaskListView) cyclePriorityFilter() {
	order := []models.Priority{"", models.PriorityHigh, models.PriorityMedium, models.PriorityLow}
	cur := v.tasks.Filters().Priority
	for i, p := range order {
		if p == cur {
			next := order[(i+1)%len(order)]
			v.tasks.SetFilters(store.TaskFilterPatch{Priority: &next})
			return
		}
	}
}

func (v *TaskListView) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.adding = false
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.addPrio = nextPriority(v.addPrio)
		return v, nil

	case msg.String() == "ctrl+t":
		// Position 0 is "no due date", then the presets in order.
		v.addDueIdx = (v.addDueIdx + 1) % (len(v.duePresets) + 1)
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		label := strings.TrimSpace(v.addLabel.Value())
		if label == "" {
			return v, nil
		}
		draft := models.CreateTask{
			Label:     label,
			Priority:  v.addPrio,
			ProjectID: v.project.ID,
		}
		if v.addDueIdx > 0 {
			due := v.duePresets[v.addDueIdx-1].Date
			draft.DueDate = &due
		}
		if _, err := v.tasks.Create(context.Background(), draft); err != nil {
			v.status = "Create failed: " + err.Error()
		}
		v.adding = false
		v.Reload()
		return v, nil
	}

	var cmd tea.Cmd
	v.addLabel, cmd = v.addLabel.Update(msg)
	return v, cmd
}

func (v *TaskListView) updateSearching(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.searching = false
		empty := ""
		v.tasks.SetFilters(store.TaskFilterPatch{Search: &empty})
		v.Reload()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		v.searching = false
		search := strings.TrimSpace(v.searchInput.Value())
		v.tasks.SetFilters(store.TaskFilterPatch{Search: &search})
		v.Reload()
		return v, nil
	}

	var cmd tea.Cmd
	v.searchInput, cmd = v.searchInput.Update(msg)
	return v, cmd
}

func (v *TaskListView) View() string {
	var b strings.Builder

	if v.adding {
		b.WriteString(v.styles.Title.Render("New task"))
		b.WriteString("\n\n")
		b.WriteString(v.styles.InputFocused.Render(v.addLabel.View()))
		b.WriteString("\n\n")
		b.WriteString("  Priority: " + v.styles.Priority(v.addPrio).Render(models.PriorityLabels[v.addPrio]))
		b.WriteString("   Due: " + v.dueLabel())
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("enter save · tab priority · ctrl+t due date · esc cancel"))
		return styles.CenterView(b.String(), v.width, v.height)
	}

	if v.searching {
		b.WriteString(v.styles.Title.Render("Search tasks"))
		b.WriteString("\n\n")
		b.WriteString(v.styles.InputFocused.Render(v.searchInput.View()))
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("enter apply · esc clear"))
		return styles.CenterView(b.String(), v.width, v.height)
	}

	b.WriteString(v.list.View())
	b.WriteString("\n")
	b.WriteString(v.styles.StatusBar.Render(v.filterSummary()))
	b.WriteString("\n")
	if err := v.tasks.Err(); err != "" {
		b.WriteString(v.styles.ErrorBar.Render(err))
		b.WriteString("\n")
	}
	if v.status != "" {
		b.WriteString(v.styles.StatusBar.Render(v.status))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render("n new · space done · / search · p priority · d delete · esc back"))
	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) dueLabel() string {
	if v.addDueIdx == 0 {
		return "none"
	}
	preset := v.duePresets[v.addDueIdx-1]
	return fmt.Sprintf("%s (%s)", preset.Label, dates.DayName(preset.Date))
}

func (v *TaskListView) filterSummary() string {
	f := v.tasks.Filters()
	parts := []string{fmt.Sprintf("%d pending", len(v.tasks.Pending()))}
	if f.Priority != "" {
		parts = append(parts, "priority: "+string(f.Priority))
	}
	if f.Search != "" {
		parts = append(parts, "search: "+f.Search)
	}
	return strings.Join(parts, " · ")
}

func nextPriority(p models.Priority) models.Priority {
	switch p {
	case models.PriorityLow:
		return models.PriorityMedium
	case models.PriorityMedium:
		return models.PriorityHigh
	default:
		return models.PriorityLow
	}
}
