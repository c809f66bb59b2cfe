package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dvloznov/finance-dashboard/internal/config"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	backends := []struct {
		name string
		open func(t *testing.T) Store
	}{
		{
			name: "memory",
			open: func(t *testing.T) Store { return NewMemoryStore() },
		},
		{
			name: "file",
			open: func(t *testing.T) Store {
				s, err := NewFileStore(t.TempDir())
				if err != nil {
					t.Fatalf("NewFileStore: %v", err)
				}
				return s
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) Store {
				s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kv.db"))
				if err != nil {
					t.Fatalf("NewSQLiteStore: %v", err)
				}
				return s
			},
		},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			defer s.Close()

			if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
				t.Fatalf("Get(missing) = ok=%v err=%v, want absent", ok, err)
			}

			if err := s.Set(ctx, "transactions", `[{"id":"1"}]`); err != nil {
				t.Fatalf("Set: %v", err)
			}

			value, ok, err := s.Get(ctx, "transactions")
			if err != nil || !ok {
				t.Fatalf("Get after Set = ok=%v err=%v", ok, err)
			}
			if value != `[{"id":"1"}]` {
				t.Errorf("value = %q, want stored payload", value)
			}

			// Overwrites replace the value.
			if err := s.Set(ctx, "transactions", `[]`); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			value, _, err = s.Get(ctx, "transactions")
			if err != nil {
				t.Fatalf("Get after overwrite: %v", err)
			}
			if value != `[]` {
				t.Errorf("value after overwrite = %q, want []", value)
			}
		})
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := first.Set(ctx, "state", "persisted"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	first.Close()

	second, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	value, ok, err := second.Get(ctx, "state")
	if err != nil || !ok {
		t.Fatalf("Get after reopen = ok=%v err=%v", ok, err)
	}
	if value != "persisted" {
		t.Errorf("value = %q, want persisted", value)
	}
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	first, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := first.Set(ctx, "state", "persisted"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	first.Close()

	second, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	value, ok, err := second.Get(ctx, "state")
	if err != nil || !ok {
		t.Fatalf("Get after reopen = ok=%v err=%v", ok, err)
	}
	if value != "persisted" {
		t.Errorf("value = %q, want persisted", value)
	}
}

func TestOpenFactory(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s, err := Open(ctx, &config.Config{KVBackend: config.BackendMemory})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer s.Close()
		if _, ok := s.(*MemoryStore); !ok {
			t.Errorf("expected *MemoryStore, got %T", s)
		}
	})

	t.Run("file", func(t *testing.T) {
		s, err := Open(ctx, &config.Config{KVBackend: config.BackendFile, DataDir: t.TempDir()})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer s.Close()
		if _, ok := s.(*FileStore); !ok {
			t.Errorf("expected *FileStore, got %T", s)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		if _, err := Open(ctx, &config.Config{KVBackend: "redis"}); err == nil {
			t.Error("expected error for unknown backend")
		}
	})
}
