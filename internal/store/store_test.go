package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func backends(t *testing.T) map[string]KV {
	t.Helper()

	sqlite, err := OpenSQLite(":memory:", nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	return map[string]KV{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestKVRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := kv.Get(ctx, "theme"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			if err := kv.Put(ctx, "theme", []byte(`"dark"`)); err != nil {
				t.Fatalf("put: %v", err)
			}
			if err := kv.Put(ctx, "theme", []byte(`"light"`)); err != nil {
				t.Fatalf("overwrite: %v", err)
			}

			got, err := kv.Get(ctx, "theme")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(got) != `"light"` {
				t.Fatalf("expected overwritten value, got %s", got)
			}

			if err := kv.Put(ctx, "weather-preferences", []byte(`{}`)); err != nil {
				t.Fatalf("put: %v", err)
			}
			if got, err := kv.Get(ctx, "weather-preferences"); err != nil || string(got) != `{}` {
				t.Fatalf("unexpected second record %q, %v", got, err)
			}

			if err := kv.Delete(ctx, "theme"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := kv.Get(ctx, "theme"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}
			if err := kv.Delete(ctx, "missing"); err != nil {
				t.Fatalf("deleting a missing key should not fail: %v", err)
			}
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()

	value := []byte("abc")
	if err := kv.Put(ctx, "k", value); err != nil {
		t.Fatalf("put: %v", err)
	}
	value[0] = 'x'

	got, _ := kv.Get(ctx, "k")
	got[1] = 'y'

	again, _ := kv.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("stored value was mutated: %s", again)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s, err := OpenSQLite(":memory:", nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if err := s.Migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	v, err := s.MigrationVersion()
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != len(migrations) {
		t.Fatalf("expected version %d, got %d", len(migrations), v)
	}
}

func TestOpenSQLiteFileAppliesPragmas(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"), zap.New(core))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("expected wal journal mode, got %q", mode)
	}
	if n := logs.FilterMessage("sqlite pragma failed").Len(); n != 0 {
		t.Errorf("expected no pragma warnings, got %d", n)
	}
}

func TestApplyPragmasLogsFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s, err := OpenSQLite(":memory:", zap.New(core))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.Close()

	s.applyPragmas()
	if n := logs.FilterMessage("sqlite pragma failed").Len(); n != 2 {
		t.Fatalf("expected both pragma failures logged, got %d", n)
	}
}
