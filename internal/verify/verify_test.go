package verify

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/zip"
)

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestArchive(t *testing.T) {
	data := buildZip(t, map[string]string{"a.txt": "hello", "b.txt": "world"})

	entries, err := Archive(bytes.NewReader(data), int64(len(data)), true)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}

	got := make(map[string]string)
	for _, e := range entries {
		got[e.Name] = string(e.Data)
	}
	if len(got) != 2 || got["a.txt"] != "hello" || got["b.txt"] != "world" {
		t.Errorf("unexpected entries: %v", got)
	}
}

func TestArchiveWithoutData(t *testing.T) {
	data := buildZip(t, map[string]string{"a.txt": "hello"})

	entries, err := Archive(bytes.NewReader(data), int64(len(data)), false)
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Data != nil {
		t.Error("expected no data")
	}
	if entries[0].Size != 5 {
		t.Errorf("expected size 5, got %d", entries[0].Size)
	}
}

func TestArchiveNested(t *testing.T) {
	data := buildZip(t, map[string]string{"dir/a.txt": "hello"})

	_, err := Archive(bytes.NewReader(data), int64(len(data)), false)
	if !errors.Is(err, ErrNested) {
		t.Errorf("expected ErrNested, got %v", err)
	}
}

func TestArchiveTruncated(t *testing.T) {
	data := buildZip(t, map[string]string{"a.txt": "hello"})
	data = data[:len(data)/2]

	if _, err := Archive(bytes.NewReader(data), int64(len(data)), false); err == nil {
		t.Error("expected error for truncated archive")
	}
}
