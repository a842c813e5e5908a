package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_ExplicitBackends(t *testing.T) {
	st, err := Open(t.TempDir(), BackendSQLite)
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	if st.Name() != BackendSQLite {
		t.Fatalf("Name=%q, want sqlite", st.Name())
	}
	_ = st.Close()

	st, err = Open(t.TempDir(), BackendFile)
	if err != nil {
		t.Fatalf("Open file: %v", err)
	}
	if st.Name() != BackendFile {
		t.Fatalf("Name=%q, want file", st.Name())
	}
	_ = st.Close()
}

// 自动探测优先 SQLite / Auto probing prefers SQLite
func TestOpen_AutoPrefersSQLite(t *testing.T) {
	for _, backend := range []string{"", "auto"} {
		st, err := Open(t.TempDir(), backend)
		if err != nil {
			t.Fatalf("Open(%q): %v", backend, err)
		}
		if st.Name() != BackendSQLite {
			t.Fatalf("Name=%q, want sqlite", st.Name())
		}
		_ = st.Close()
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open(t.TempDir(), "redis"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestOpen_EmptyDir(t *testing.T) {
	_, err := Open("   ", "auto")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

// 目录路径被普通文件占住，两个后端都起不来，返回 ErrUnavailable
// A plain file squatting on the dir path defeats both backends, yielding
// ErrUnavailable
func TestOpen_NoUsableBackend(t *testing.T) {
	blocked := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	_, err := Open(blocked, "auto")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
