// Package archive turns a directory under the storage root into a zip
// stream produced by an external archiver process.
//
// The package handles:
//   - Resolving an archive identifier to a directory under the storage root
//   - Spawning the archiver with stdout piped and stderr captured
//   - Forwarding the archiver output in fixed-size chunks, in order
//   - Killing and reaping the archiver on every exit path
//
// # Usage
//
//	dir, err := archive.Resolve(root, hash)
//	if errors.Is(err, archive.ErrNotFound) {
//	    // 404
//	}
//
//	s := &archive.Streamer{Command: "zip", Delay: 0, Logger: logger}
//	stats, err := s.Stream(ctx, w, dir)
//	// errors.Is(err, context.Canceled) when the caller went away
package archive
