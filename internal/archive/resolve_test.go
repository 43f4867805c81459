package archive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolve(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "abc123"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "plain"), []byte("x"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	dir, err := Resolve(root, "abc123")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if dir != filepath.Join(root, "abc123") {
		t.Errorf("expected %s, got %s", filepath.Join(root, "abc123"), dir)
	}
}

func TestResolveNotFound(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "inner"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "plain"), []byte("x"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	tests := []struct {
		name string
		id   string
	}{
		{"missing", "doesnotexist"},
		{"empty", ""},
		{"dot", "."},
		{"parent", ".."},
		{"traversal", "../etc"},
		{"nested", "inner/x"},
		{"absolute", "/tmp"},
		{"regular file", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(root, tt.id)
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}
