package models

import "time"

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// PriorityLabels maps priorities to their display labels.
var PriorityLabels = map[Priority]string{
	PriorityLow:    "Low",
	PriorityMedium: "Medium",
	PriorityHigh:   "High",
}

// Project groups tasks together. At most one project in a collection
// may have IsDefault set.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"isDefault,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// EntityID implements storage.Entity.
func (p Project) EntityID() string { return p.ID }

// Task is a single task belonging to a project. CompletedAt is the sole
// completion state: nil while pending, the completion time once done.
type Task struct {
	ID          string     `json:"id"`
	Label       string     `json:"label"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    Priority   `json:"priority"`
	ProjectID   string     `json:"projectId"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// EntityID implements storage.Entity.
func (t Task) EntityID() string { return t.ID }

// Completed reports whether the task has been completed.
func (t Task) Completed() bool { return t.CompletedAt != nil }
