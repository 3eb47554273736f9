package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"taskdeck/internal/auth"
	"taskdeck/internal/realtime"
)

//go:embed schema.sql
var schema string

// Open opens (or creates) the sqlite database and initializes the
// schema.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return db, nil
}

// SQLite is the database-backed adapter. Rows use snake_case columns;
// the mechanical camel<->snake translation sits at this boundary.
// Creates are scoped to the authenticated identity (a user_id column is
// injected); reads are not filtered here, access control is the
// database's job. Every successful write publishes a change event to
// the realtime hub.
type SQLite[T Entity, D, P any] struct {
	desc     Descriptor[T, D, P]
	db       *sql.DB
	hub      *realtime.Hub
	identity auth.Provider
	logger   *zap.Logger
}

// NewSQLite returns a database adapter for one collection.
func NewSQLite[T Entity, D, P any](desc Descriptor[T, D, P], db *sql.DB, hub *realtime.Hub, identity auth.Provider, logger *zap.Logger) *SQLite[T, D, P] {
	return &SQLite[T, D, P]{desc: desc, db: db, hub: hub, identity: identity, logger: logger}
}

// GetAll returns the collection newest-first.
func (a *SQLite[T, D, P]) GetAll(ctx context.Context) ([]T, error) {
	rows, err := a.db.QueryContext(ctx,
		fmt.Sprintf("SELECT * FROM %s ORDER BY created_at DESC", a.desc.Table))
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", a.desc.Table, err)
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", a.desc.Table, err)
		}
		item, err := a.desc.FromFields(FromBackendRow(row))
		if err != nil {
			return nil, fmt.Errorf("decode %s row: %w", a.desc.Table, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (a *SQLite[T, D, P]) GetByID(ctx context.Context, id string) (*T, error) {
	rows, err := a.db.QueryContext(ctx,
		fmt.Sprintf("SELECT * FROM %s WHERE id = ?", a.desc.Table), id)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", a.desc.Table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	row, err := scanRow(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", a.desc.Table, err)
	}
	item, err := a.desc.FromFields(FromBackendRow(row))
	if err != nil {
		return nil, fmt.Errorf("decode %s row: %w", a.desc.Table, err)
	}
	return &item, nil
}

func (a *SQLite[T, D, P]) Create(ctx context.Context, draft D) (T, error) {
	var zero T
	ident := a.identity.Current()
	if ident == nil {
		return zero, fmt.Errorf("create %s: %w", a.desc.Table, ErrUnauthenticated)
	}

	item := a.desc.Materialize(draft, uuid.NewString(), time.Now().UTC())
	fields, err := entityFields(item)
	if err != nil {
		return zero, err
	}
	row := ToBackendRow(fields)
	row["user_id"] = ident.UserID

	if err := a.insert(ctx, row); err != nil {
		return zero, err
	}
	a.hub.Publish(realtime.Event{Type: realtime.EventInsert, Table: a.desc.Table, Row: row})
	return item, nil
}

func (a *SQLite[T, D, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	var zero T
	row := ToBackendRow(a.desc.PatchFields(patch))
	if len(row) > 0 {
		cols := sortedKeys(row)
		sets := make([]string, len(cols))
		args := make([]any, 0, len(cols)+1)
		for i, c := range cols {
			sets[i] = c + " = ?"
			args = append(args, bindValue(row[c]))
		}
		args = append(args, id)
		res, err := a.db.ExecContext(ctx,
			fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", a.desc.Table, strings.Join(sets, ", ")), args...)
		if err != nil {
			return zero, fmt.Errorf("update %s: %w", a.desc.Table, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return zero, fmt.Errorf("update %s %q: %w", a.desc.Table, id, ErrNotFound)
		}
	}

	cur, err := a.GetByID(ctx, id)
	if err != nil {
		return zero, err
	}
	if cur == nil {
		return zero, fmt.Errorf("update %s %q: %w", a.desc.Table, id, ErrNotFound)
	}

	fields, err := entityFields(*cur)
	if err == nil {
		a.hub.Publish(realtime.Event{Type: realtime.EventUpdate, Table: a.desc.Table, Row: ToBackendRow(fields)})
	}
	return *cur, nil
}

func (a *SQLite[T, D, P]) Delete(ctx context.Context, id string) error {
	res, err := a.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = ?", a.desc.Table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", a.desc.Table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		a.logger.Debug("delete of missing row ignored",
			zap.String("table", a.desc.Table), zap.String("id", id))
		return nil
	}
	a.hub.Publish(realtime.Event{Type: realtime.EventDelete, Table: a.desc.Table, OldID: id})
	return nil
}

func (a *SQLite[T, D, P]) DeleteByField(ctx context.Context, field string, value any) error {
	col := CamelToSnake(field)
	ids, err := a.selectIDs(ctx,
		fmt.Sprintf("SELECT id FROM %s WHERE %s = ?", a.desc.Table, col), bindValue(value))
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if _, err := a.db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s = ?", a.desc.Table, col), bindValue(value)); err != nil {
		return fmt.Errorf("delete %s by %s: %w", a.desc.Table, col, err)
	}
	for _, id := range ids {
		a.hub.Publish(realtime.Event{Type: realtime.EventDelete, Table: a.desc.Table, OldID: id})
	}
	return nil
}

func (a *SQLite[T, D, P]) Clear(ctx context.Context) error {
	ids, err := a.selectIDs(ctx, fmt.Sprintf("SELECT id FROM %s", a.desc.Table))
	if err != nil {
		return err
	}
	if _, err := a.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", a.desc.Table)); err != nil {
		return fmt.Errorf("clear %s: %w", a.desc.Table, err)
	}
	for _, id := range ids {
		a.hub.Publish(realtime.Event{Type: realtime.EventDelete, Table: a.desc.Table, OldID: id})
	}
	return nil
}

// SetAll replaces the collection as clear-then-insert. Not atomic: a
// failure mid-way can leave the collection partially filled.
func (a *SQLite[T, D, P]) SetAll(ctx context.Context, items []T) error {
	if err := a.Clear(ctx); err != nil {
		return err
	}
	var userID any
	if ident := a.identity.Current(); ident != nil {
		userID = ident.UserID
	}
	for _, item := range items {
		fields, err := entityFields(item)
		if err != nil {
			return err
		}
		row := ToBackendRow(fields)
		if userID != nil {
			row["user_id"] = userID
		}
		if err := a.insert(ctx, row); err != nil {
			return err
		}
		a.hub.Publish(realtime.Event{Type: realtime.EventInsert, Table: a.desc.Table, Row: row})
	}
	return nil
}

func (a *SQLite[T, D, P]) insert(ctx context.Context, row map[string]any) error {
	cols := sortedKeys(row)
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		marks[i] = "?"
		args[i] = bindValue(row[c])
	}
	_, err := a.db.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			a.desc.Table, strings.Join(cols, ", "), strings.Join(marks, ", ")), args...)
	if err != nil {
		return fmt.Errorf("insert %s: %w", a.desc.Table, err)
	}
	return nil
}

func (a *SQLite[T, D, P]) selectIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select ids %s: %w", a.desc.Table, err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// scanRow reads the current row into a column-keyed map.
func scanRow(rows *sql.Rows) (map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	row := make(map[string]any, len(cols))
	for i, c := range cols {
		v := vals[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		row[c] = v
	}
	return row, nil
}

// bindValue converts field-map values to driver-friendly forms.
func bindValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Format(time.RFC3339Nano)
	}
	return v
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
