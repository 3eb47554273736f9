package models

import "time"

// Optional distinguishes an absent patch field from one explicitly set,
// including set-to-null for nullable fields.
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some returns an Optional carrying v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// CreateProject is the payload for creating a project: a Project minus
// the backend-assigned ID and CreatedAt.
type CreateProject struct {
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

// ProjectPatch is a partial update. Identity fields (ID, CreatedAt) are
// not representable, so they can never be overwritten by a patch.
type ProjectPatch struct {
	Name      *string
	IsDefault *bool
}

// Apply returns a copy of p with the set patch fields replaced.
func (patch ProjectPatch) Apply(p Project) Project {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.IsDefault != nil {
		p.IsDefault = *patch.IsDefault
	}
	return p
}

// Fields returns the set patch fields keyed by entity field name.
func (patch ProjectPatch) Fields() map[string]any {
	m := map[string]any{}
	if patch.Name != nil {
		m["name"] = *patch.Name
	}
	if patch.IsDefault != nil {
		m["isDefault"] = *patch.IsDefault
	}
	return m
}

// CreateTask is the payload for creating a task.
type CreateTask struct {
	Label       string     `json:"label"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    Priority   `json:"priority"`
	ProjectID   string     `json:"projectId"`
}

// TaskPatch is a partial update for a task. DueDate and CompletedAt are
// Optional so a patch can clear them (set-to-null) as well as change them.
type TaskPatch struct {
	Label       *string
	Description *string
	DueDate     Optional[*time.Time]
	Priority    *Priority
	ProjectID   *string
	CompletedAt Optional[*time.Time]
}

// Apply returns a copy of t with the set patch fields replaced.
func (patch TaskPatch) Apply(t Task) Task {
	if patch.Label != nil {
		t.Label = *patch.Label
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.DueDate.Set {
		t.DueDate = patch.DueDate.Value
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.ProjectID != nil {
		t.ProjectID = *patch.ProjectID
	}
	if patch.CompletedAt.Set {
		t.CompletedAt = patch.CompletedAt.Value
	}
	return t
}

// Fields returns the set patch fields keyed by entity field name.
func (patch TaskPatch) Fields() map[string]any {
	m := map[string]any{}
	if patch.Label != nil {
		m["label"] = *patch.Label
	}
	if patch.Description != nil {
		m["description"] = *patch.Description
	}
	if patch.DueDate.Set {
		m["dueDate"] = timeOrNil(patch.DueDate.Value)
	}
	if patch.Priority != nil {
		m["priority"] = string(*patch.Priority)
	}
	if patch.ProjectID != nil {
		m["projectId"] = *patch.ProjectID
	}
	if patch.CompletedAt.Set {
		m["completedAt"] = timeOrNil(patch.CompletedAt.Value)
	}
	return m
}

func timeOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
