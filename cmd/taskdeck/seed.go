package main

import (
	"context"
	"time"

	"taskdeck/internal/models"
	"taskdeck/internal/store"
)

// seed populates a recognizable demo workspace through the normal
// store path, so ids and timestamps are assigned the same way real
// usage would.
func seed(ctx context.Context, projects *store.Projects, tasks *store.Tasks) error {
	type seedTask struct {
		label    string
		priority models.Priority
		dueIn    int // days from now; negative means no due date
		done     bool
	}

	demo := []struct {
		name      string
		isDefault bool
		tasks     []seedTask
	}{
		{
			name:      "Website",
			isDefault: true,
			tasks: []seedTask{
				{label: "Design mockups", priority: models.PriorityHigh, dueIn: 3},
				{label: "Header integration", priority: models.PriorityMedium, dueIn: 7},
				{label: "Responsive footer", priority: models.PriorityLow, dueIn: 14},
				{label: "Pick a color palette", priority: models.PriorityLow, dueIn: -1, done: true},
			},
		},
		{
			name: "Mobile app",
			tasks: []seedTask{
				{label: "Project scaffolding", priority: models.PriorityHigh, dueIn: 5},
				{label: "Navigation stack", priority: models.PriorityMedium, dueIn: 10},
			},
		},
		{
			name: "Backend API",
			tasks: []seedTask{
				{label: "Auth endpoints", priority: models.PriorityHigh, dueIn: 2},
				{label: "Rate limiting", priority: models.PriorityMedium, dueIn: -1},
			},
		},
	}

	for _, p := range demo {
		project, err := projects.Create(ctx, models.CreateProject{Name: p.name, IsDefault: p.isDefault})
		if err != nil {
			return err
		}
		for _, t := range p.tasks {
			draft := models.CreateTask{
				Label:     t.label,
				Priority:  t.priority,
				ProjectID: project.ID,
			}
			if t.dueIn >= 0 {
				due := time.Now().AddDate(0, 0, t.dueIn)
				draft.DueDate = &due
			}
			created, err := tasks.Create(ctx, draft)
			if err != nil {
				return err
			}
			if t.done {
				if _, err := tasks.Complete(ctx, created.ID); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
