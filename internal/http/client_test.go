package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func fastRetryOptions() Options {
	opts := DefaultOptions()
	opts.RetryBackoff = 10 * time.Millisecond
	opts.RetryMaxBackoff = 50 * time.Millisecond
	return opts
}

func TestArchiveURL(t *testing.T) {
	tests := []struct {
		base     string
		hash     string
		expected string
	}{
		{"http://localhost:8080", "abc123", "http://localhost:8080/archive/abc123/"},
		{"http://localhost:8080/", "abc123", "http://localhost:8080/archive/abc123/"},
		{"http://host", "a b", "http://host/archive/a%20b/"},
	}

	for _, tt := range tests {
		result := ArchiveURL(tt.base, tt.hash)
		if result != tt.expected {
			t.Errorf("ArchiveURL(%q, %q) = %q, want %q", tt.base, tt.hash, result, tt.expected)
		}
	}
}

func TestDownloadArchive(t *testing.T) {
	data := []byte("PK\x03\x04 pretend archive")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/archive/abc123/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", "attachment")
		w.Write(data)
	}))
	defer server.Close()

	client := NewClient(DefaultOptions())

	var dst bytes.Buffer
	n, err := client.DownloadArchive(context.Background(), server.URL, "abc123", &dst)
	if err != nil {
		t.Fatalf("DownloadArchive: %v", err)
	}

	if n != int64(len(data)) {
		t.Errorf("expected %d bytes, got %d", len(data), n)
	}
	if !bytes.Equal(dst.Bytes(), data) {
		t.Errorf("expected %q, got %q", data, dst.Bytes())
	}
}

func TestDownloadArchiveNotFound(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "archive does not exist or has been deleted", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(fastRetryOptions())
	_, err := client.DownloadArchive(context.Background(), server.URL, "missing", &bytes.Buffer{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if attempts.Load() != 1 {
		t.Errorf("expected no retries for 404, got %d attempts", attempts.Load())
	}
}

func TestDownloadArchiveWrongContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	client := NewClient(DefaultOptions())
	_, err := client.DownloadArchive(context.Background(), server.URL, "abc123", &bytes.Buffer{})
	if !errors.Is(err, ErrContentType) {
		t.Errorf("expected ErrContentType, got %v", err)
	}
}

func TestDownloadArchiveTruncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("partial"))
		w.(http.Flusher).Flush()
		panic(http.ErrAbortHandler)
	}))
	defer server.Close()

	client := NewClient(DefaultOptions())

	var dst bytes.Buffer
	_, err := client.DownloadArchive(context.Background(), server.URL, "abc123", &dst)
	if err == nil {
		t.Fatal("expected error for truncated body")
	}
}

func TestRetryOnServerError(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		w.Write([]byte("zip"))
	}))
	defer server.Close()

	client := NewClient(fastRetryOptions())

	var dst bytes.Buffer
	if _, err := client.DownloadArchive(context.Background(), server.URL, "abc123", &dst); err != nil {
		t.Fatalf("DownloadArchive: %v", err)
	}

	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
	if dst.String() != "zip" {
		t.Errorf("expected 'zip', got %q", dst.String())
	}
}

func TestRetryExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(fastRetryOptions())
	_, err := client.DownloadArchive(context.Background(), server.URL, "abc123", &bytes.Buffer{})
	if !errors.Is(err, ErrServerError) {
		t.Errorf("expected ErrServerError, got %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(DefaultOptions())
	_, err := client.DownloadArchive(ctx, server.URL, "abc123", &bytes.Buffer{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}
