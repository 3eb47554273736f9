package storage

import (
	"time"

	"taskdeck/internal/models"
)

// Logical collection keys and their backend tables.
const (
	ProjectsKey   = "taskdeck-projects"
	ProjectsTable = "projects"
	TasksKey      = "taskdeck-tasks"
	TasksTable    = "tasks"
)

// ProjectsDescriptor binds the projects collection to the storage layer.
func ProjectsDescriptor() Descriptor[models.Project, models.CreateProject, models.ProjectPatch] {
	return Descriptor[models.Project, models.CreateProject, models.ProjectPatch]{
		Key:   ProjectsKey,
		Table: ProjectsTable,
		Materialize: func(draft models.CreateProject, id string, createdAt time.Time) models.Project {
			return models.Project{
				ID:        id,
				Name:      draft.Name,
				IsDefault: draft.IsDefault,
				CreatedAt: createdAt,
			}
		},
		Apply:       func(p models.Project, patch models.ProjectPatch) models.Project { return patch.Apply(p) },
		PatchFields: func(patch models.ProjectPatch) map[string]any { return patch.Fields() },
		FromFields:  projectFromFields,
	}
}

// TasksDescriptor binds the tasks collection to the storage layer.
func TasksDescriptor() Descriptor[models.Task, models.CreateTask, models.TaskPatch] {
	return Descriptor[models.Task, models.CreateTask, models.TaskPatch]{
		Key:   TasksKey,
		Table: TasksTable,
		Materialize: func(draft models.CreateTask, id string, createdAt time.Time) models.Task {
			return models.Task{
				ID:          id,
				Label:       draft.Label,
				Description: draft.Description,
				DueDate:     draft.DueDate,
				Priority:    draft.Priority,
				ProjectID:   draft.ProjectID,
				CreatedAt:   createdAt,
			}
		},
		Apply:       func(t models.Task, patch models.TaskPatch) models.Task { return patch.Apply(t) },
		PatchFields: func(patch models.TaskPatch) map[string]any { return patch.Fields() },
		FromFields:  taskFromFields,
	}
}

func projectFromFields(fields map[string]any) (models.Project, error) {
	createdAt, err := fieldTime(fields, "createdAt")
	if err != nil {
		return models.Project{}, err
	}
	return models.Project{
		ID:        fieldString(fields, "id"),
		Name:      fieldString(fields, "name"),
		IsDefault: fieldBool(fields, "isDefault"),
		CreatedAt: createdAt,
	}, nil
}

func taskFromFields(fields map[string]any) (models.Task, error) {
	createdAt, err := fieldTime(fields, "createdAt")
	if err != nil {
		return models.Task{}, err
	}
	dueDate, err := fieldTimePtr(fields, "dueDate")
	if err != nil {
		return models.Task{}, err
	}
	completedAt, err := fieldTimePtr(fields, "completedAt")
	if err != nil {
		return models.Task{}, err
	}
	return models.Task{
		ID:          fieldString(fields, "id"),
		Label:       fieldString(fields, "label"),
		Description: fieldString(fields, "description"),
		DueDate:     dueDate,
		Priority:    models.Priority(fieldString(fields, "priority")),
		ProjectID:   fieldString(fields, "projectId"),
		CompletedAt: completedAt,
		CreatedAt:   createdAt,
	}, nil
}
