// Package export writes archive streams to object storage.
//
// The archive is produced by the same streamer that serves HTTP
// downloads and is copied into a gocloud.dev bucket as it is generated.
// An aborted export never leaves a partial object behind.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/ligustah/photoarchive/internal/archive"
)

// ErrBucket is returned when the destination bucket rejects the object.
var ErrBucket = errors.New("export: bucket")

// Streamer produces an archive of dir into dst.
type Streamer interface {
	Stream(ctx context.Context, dst io.Writer, dir string) (archive.Stats, error)
}

// Options configures an export.
type Options struct {
	// Wrap, if set, wraps the bucket writer, e.g. for progress counting.
	Wrap func(io.Writer) io.Writer
}

// Export streams the archive of dir into bucket under key.
func Export(ctx context.Context, s Streamer, bucket *blob.Bucket, dir, key string, opts Options) (archive.Stats, error) {
	// Cancelling the writer context discards the upload.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bw, err := bucket.NewWriter(wctx, key, &blob.WriterOptions{
		ContentType:        "application/zip",
		ContentDisposition: "attachment",
	})
	if err != nil {
		return archive.Stats{}, fmt.Errorf("%w: open writer for %s: %w", ErrBucket, key, err)
	}

	var dst io.Writer = bw
	if opts.Wrap != nil {
		dst = opts.Wrap(bw)
	}

	stats, err := s.Stream(ctx, dst, dir)
	if err != nil {
		cancel()
		bw.Close()
		return stats, err
	}

	if err := bw.Close(); err != nil {
		return stats, fmt.Errorf("%w: commit %s (%s): %w", ErrBucket, key, gcerrors.Code(err), err)
	}
	return stats, nil
}

// Exists reports whether key is present in bucket.
func Exists(ctx context.Context, bucket *blob.Bucket, key string) (bool, error) {
	_, err := bucket.Attributes(ctx, key)
	if err == nil {
		return true, nil
	}
	if gcerrors.Code(err) == gcerrors.NotFound {
		return false, nil
	}
	return false, fmt.Errorf("%w: attributes of %s: %w", ErrBucket, key, err)
}
