// Package realtime carries change notifications from the database
// backend to interested subscribers. The sqlite adapter publishes an
// event after every successful write; every client of the same database
// (this process or another screen of it) sees the change without
// re-fetching.
package realtime

// EventType tags what happened to a row.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event is one change to one row. Row uses the backend naming
// convention (snake_case keys) for INSERT and UPDATE; DELETE events
// carry only the prior row's id in OldID.
type Event struct {
	Type  EventType
	Table string
	Row   map[string]any
	OldID string
}
