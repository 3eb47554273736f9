package storage

import "strings"

// The entity structs use lowerCamelCase field names (their JSON form);
// database rows use snake_case. The translation is mechanical in both
// directions: fooBar <-> foo_bar.

// CamelToSnake converts fooBar to foo_bar.
func CamelToSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SnakeToCamel converts foo_bar to fooBar.
func SnakeToCamel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	upper := false
	for _, r := range s {
		if r == '_' {
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			b.WriteRune(r - 'a' + 'A')
			upper = false
			continue
		}
		upper = false
		b.WriteRune(r)
	}
	return b.String()
}

// ToBackendRow translates a field map's keys from entity naming to
// backend naming.
func ToBackendRow(fields map[string]any) map[string]any {
	row := make(map[string]any, len(fields))
	for k, v := range fields {
		row[CamelToSnake(k)] = v
	}
	return row
}

// FromBackendRow translates a row's keys from backend naming to entity
// naming.
func FromBackendRow(row map[string]any) map[string]any {
	fields := make(map[string]any, len(row))
	for k, v := range row {
		fields[SnakeToCamel(k)] = v
	}
	return fields
}
