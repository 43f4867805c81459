package progress

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.00 KB"},
		{150 * 1024, "150.00 KB"},
		{1536 * 1024, "1.50 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{1024 * 1024 * 1024 * 1024, "1.00 TB"},
	}

	for _, tt := range tests {
		result := FormatBytes(tt.input)
		if result != tt.expected {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m 30s"},
		{3723 * time.Second, "1h 2m 3s"},
	}

	for _, tt := range tests {
		result := FormatDuration(tt.input)
		if result != tt.expected {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

// syncBuffer is a bytes.Buffer safe for the reporter goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestReporterCountsWrites(t *testing.T) {
	var out syncBuffer
	r := NewReporter(Options{
		Label:          "Exporting abc123",
		Output:         &out,
		UpdateInterval: 10 * time.Millisecond,
	})
	r.Start()

	var dst bytes.Buffer
	w := r.Writer(&dst)
	w.Write([]byte("hello"))
	w.Write([]byte("world"))

	time.Sleep(30 * time.Millisecond)
	r.Stop()

	if r.Bytes() != 10 {
		t.Errorf("expected 10 bytes, got %d", r.Bytes())
	}
	if r.Chunks() != 2 {
		t.Errorf("expected 2 chunks, got %d", r.Chunks())
	}
	if dst.String() != "helloworld" {
		t.Errorf("expected writes to pass through, got %q", dst.String())
	}

	output := out.String()
	if !strings.Contains(output, "Exporting abc123") {
		t.Errorf("expected label in output, got %q", output)
	}
	if !strings.Contains(output, "Total: 10 B") {
		t.Errorf("expected final summary in output, got %q", output)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestReporterIgnoresFailedWrites(t *testing.T) {
	r := NewReporter(Options{Output: &syncBuffer{}})

	if _, err := r.Writer(failingWriter{}).Write([]byte("data")); err == nil {
		t.Fatal("expected write error")
	}
	if r.Bytes() != 0 || r.Chunks() != 0 {
		t.Errorf("expected nothing recorded, got %d bytes in %d chunks", r.Bytes(), r.Chunks())
	}
}

func TestReporterStopIsIdempotent(t *testing.T) {
	r := NewReporter(Options{Output: &syncBuffer{}})
	r.Stop() // not started

	r.Start()
	r.Stop()
	r.Stop()
}
