// Package http provides an HTTP client for downloading archives from a
// photoarchive server.
//
// This package handles:
//   - Building archive URLs
//   - Retry with exponential backoff before the body starts
//   - Mapping 404 to ErrNotFound
//
// Archive bodies have no Content-Length; a connection that closes early
// surfaces as a read error from DownloadArchive.
//
// # Usage
//
//	client := http.NewClient(http.DefaultOptions())
//
//	n, err := client.DownloadArchive(ctx, "http://localhost:8080", "abc123", f)
//	if errors.Is(err, http.ErrNotFound) {
//	    // no such archive
//	}
package http
