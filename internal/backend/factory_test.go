package backend

import (
	"context"
	"path/filepath"
	"testing"
)

func TestCreateMemoryBackend(t *testing.T) {
	factory := NewFactory(nil)

	result, err := factory.CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend(memory) error = %v", err)
	}
	if result.Backend == nil {
		t.Error("memory backend is nil")
	}
	if result.Cleanup != nil {
		t.Error("memory backend should not need cleanup")
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	factory := NewFactory(nil)

	cfg := Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "test.db")}
	result, err := factory.CreateBackend(context.Background(), cfg)
	if err != nil {
		t.Fatalf("CreateBackend(sqlite) error = %v", err)
	}
	if result.Backend == nil {
		t.Error("sqlite backend is nil")
	}
	if result.Cleanup == nil {
		t.Fatal("sqlite backend missing cleanup")
	}
	if err := result.Cleanup(); err != nil {
		t.Errorf("Cleanup() error = %v", err)
	}
}

func TestCreateBackendValidation(t *testing.T) {
	factory := NewFactory(nil)

	if _, err := factory.CreateBackend(context.Background(), Config{Type: "redis"}); err == nil {
		t.Error("accepted unknown backend type")
	}
	if _, err := factory.CreateBackend(context.Background(), Config{Type: SQLiteBackend}); err == nil {
		t.Error("accepted sqlite backend without a db path")
	}
}

func TestBackendTypeIsValid(t *testing.T) {
	tests := []struct {
		bt   BackendType
		want bool
	}{
		{SQLiteBackend, true},
		{MemoryBackend, true},
		{"", false},
		{"postgres", false},
	}
	for _, tt := range tests {
		if got := tt.bt.IsValid(); got != tt.want {
			t.Errorf("BackendType(%q).IsValid() = %v, want %v", tt.bt, got, tt.want)
		}
	}
}
