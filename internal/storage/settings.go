package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Settings is a small key/value store for UI preferences (last opened
// project and the like). Get returns "" for a missing key.
type Settings interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// SQLiteSettings keeps settings in the settings table.
type SQLiteSettings struct {
	db *sql.DB
}

// NewSQLiteSettings returns settings backed by the database.
func NewSQLiteSettings(db *sql.DB) *SQLiteSettings {
	return &SQLiteSettings{db: db}
}

func (s *SQLiteSettings) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (s *SQLiteSettings) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// FileSettings keeps settings as a JSON object in one file, with the
// same degrade-to-memory behavior as the local collection adapter.
type FileSettings struct {
	path   string
	logger *zap.Logger

	mu       sync.Mutex
	fallback bool
	buffer   map[string]string
}

// NewFileSettings returns settings stored under dir/settings.json.
func NewFileSettings(dir string, logger *zap.Logger) *FileSettings {
	return &FileSettings{path: filepath.Join(dir, "settings.json"), logger: logger}
}

func (s *FileSettings) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()[key], nil
}

func (s *FileSettings) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.load()
	values[key] = value
	if s.fallback {
		s.buffer = values
		return nil
	}
	data, err := json.Marshal(values)
	if err == nil {
		err = os.WriteFile(s.path, data, 0644)
	}
	if err != nil {
		s.logger.Warn("settings write failed, falling back to memory buffer", zap.Error(err))
		s.fallback = true
		s.buffer = values
	}
	return nil
}

func (s *FileSettings) load() map[string]string {
	if s.fallback {
		if s.buffer == nil {
			s.buffer = map[string]string{}
		}
		return s.buffer
	}
	values := map[string]string{}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values
	}
	if err != nil {
		s.logger.Warn("settings unavailable, using memory buffer", zap.Error(err))
		s.fallback = true
		s.buffer = values
		return values
	}
	if err := json.Unmarshal(data, &values); err != nil {
		s.logger.Warn("corrupt settings treated as empty", zap.Error(err))
		return map[string]string{}
	}
	return values
}
