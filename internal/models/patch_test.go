package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProjectPatchApply(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	p := Project{ID: "p1", Name: "Old", IsDefault: true, CreatedAt: created}

	name := "New"
	got := ProjectPatch{Name: &name}.Apply(p)
	assert.Equal(t, "New", got.Name)
	assert.True(t, got.IsDefault, "unset fields stay as they were")
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, created, got.CreatedAt)

	assert.Equal(t, p, ProjectPatch{}.Apply(p), "empty patch is the identity")
}

func TestTaskPatchOptionalDistinguishesUnsetFromNull(t *testing.T) {
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	task := Task{ID: "t1", Label: "t", DueDate: &due, Priority: PriorityHigh}

	// Unset leaves the due date alone.
	label := "renamed"
	got := TaskPatch{Label: &label}.Apply(task)
	assert.NotNil(t, got.DueDate)

	// Explicit null clears it.
	got = TaskPatch{DueDate: Some[*time.Time](nil)}.Apply(task)
	assert.Nil(t, got.DueDate)

	// Explicit value replaces it.
	later := due.AddDate(0, 0, 14)
	got = TaskPatch{DueDate: Some(&later)}.Apply(task)
	assert.Equal(t, &later, got.DueDate)
}

func TestTaskPatchFields(t *testing.T) {
	assert.Empty(t, TaskPatch{}.Fields())

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	prio := PriorityLow
	fields := TaskPatch{
		Priority:    &prio,
		DueDate:     Some[*time.Time](nil),
		CompletedAt: Some(&now),
	}.Fields()

	assert.Equal(t, "low", fields["priority"])
	val, present := fields["dueDate"]
	assert.True(t, present, "cleared fields appear with a nil value")
	assert.Nil(t, val)
	assert.Equal(t, now, fields["completedAt"])
	assert.NotContains(t, fields, "label")
}

func TestPriorityValid(t *testing.T) {
	assert.True(t, PriorityHigh.Valid())
	assert.True(t, PriorityMedium.Valid())
	assert.True(t, PriorityLow.Valid())
	assert.False(t, Priority("urgent").Valid())
	assert.False(t, Priority("").Valid())
}

func TestTaskCompleted(t *testing.T) {
	now := time.Now()
	assert.False(t, Task{}.Completed())
	assert.True(t, Task{CompletedAt: &now}.Completed())
}
