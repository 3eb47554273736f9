package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCamelToSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"id", "id"},
		{"name", "name"},
		{"projectId", "project_id"},
		{"dueDate", "due_date"},
		{"completedAt", "completed_at"},
		{"isDefault", "is_default"},
		{"createdAt", "created_at"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CamelToSnake(tt.in))
		assert.Equal(t, tt.in, SnakeToCamel(tt.want), "translation must be bidirectional")
	}
}

func TestRowTranslation(t *testing.T) {
	fields := map[string]any{
		"id":        "x",
		"projectId": "p",
		"dueDate":   nil,
	}
	row := ToBackendRow(fields)
	assert.Equal(t, map[string]any{
		"id":         "x",
		"project_id": "p",
		"due_date":   nil,
	}, row)
	assert.Equal(t, fields, FromBackendRow(row))
}
