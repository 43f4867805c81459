// Package server exposes photo archives over HTTP.
//
// Routes:
//   - GET /                        static index page
//   - GET /archive/{archive_hash}/ zip of the archive directory, streamed
//
// Archive responses are committed (200, headers flushed) before the
// archiver starts, so failures after that point abort the connection
// instead of changing the status.
package server
