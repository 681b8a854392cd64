package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists KV records in a single SQLite table.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// OpenSQLite opens (or creates) the database at path and applies migrations.
// Use ":memory:" for a throwaway store.
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := NewSQLiteStore(db, logger)
	if path == ":memory:" {
		// each connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	} else {
		s.applyPragmas()
	}

	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewSQLiteStore wraps an open database. Call Migrate before use.
func NewSQLiteStore(db *sql.DB, logger *zap.Logger) *SQLiteStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStore{db: db, logger: logger}
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// applyPragmas enables WAL and a busy timeout. Both are tuning only, so a
// failure is logged and the store stays usable.
func (s *SQLiteStore) applyPragmas() {
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := s.db.Exec(pragma); err != nil {
			s.logger.Warn("sqlite pragma failed", zap.String("pragma", pragma), zap.Error(err))
		}
	}
}
