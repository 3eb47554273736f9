package storage

import (
	"encoding/json"
	"fmt"
	"time"
)

// entityFields flattens an entity to a field map in entity naming
// convention by round-tripping through its JSON form. Timestamps come
// out as RFC 3339 strings, which is also how the database stores them.
func entityFields(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode entity fields: %w", err)
	}
	return fields, nil
}

// normalizeValue reduces a value to its JSON-normal form so field
// comparisons behave the same whether the value came from a live struct
// or a decoded row.
func normalizeValue(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

func fieldString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func fieldBool(m map[string]any, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case float64:
		return v != 0
	}
	return false
}

func fieldTime(m map[string]any, key string) (time.Time, error) {
	switch v := m[key].(type) {
	case time.Time:
		return v, nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("field %s: %w", key, err)
		}
		return t, nil
	case nil:
		return time.Time{}, fmt.Errorf("field %s: missing timestamp", key)
	default:
		return time.Time{}, fmt.Errorf("field %s: unexpected type %T", key, v)
	}
}

func fieldTimePtr(m map[string]any, key string) (*time.Time, error) {
	if v, ok := m[key]; !ok || v == nil {
		return nil, nil
	}
	t, err := fieldTime(m, key)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
