package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/ligustah/photoarchive/internal/archive"
	"github.com/ligustah/photoarchive/internal/export"
	"github.com/ligustah/photoarchive/internal/progress"
)

// runExport streams an archive directory into object storage.
func runExport(args []string) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)

	photosFolder := fs.String("photos_folder", os.Getenv("PHOTOS_FOLDER"), "Path to the folder where photos are stored")
	hash := fs.String("hash", "", "Archive hash (required)")
	bucket := fs.String("bucket", "", "Destination bucket URL (required)")
	object := fs.String("object", "", "Destination object key (default <hash>.zip)")
	zipCommand := fs.String("zip_command", archive.DefaultCommand, "Archiver executable")
	showProgress := fs.Bool("progress", false, "Show progress output")
	force := fs.Bool("force", false, "Overwrite an existing object")
	debugLog := fs.Bool("debug_log", false, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: photoarchive export [options]

Zip an archive directory and stream it into object storage
(s3://, gs://, file:// bucket URLs).

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return ExitSuccess
		}
		return ExitInvalidArgs
	}

	if *photosFolder == "" || *hash == "" || *bucket == "" {
		fmt.Fprintln(os.Stderr, "Error: -photos_folder, -hash, and -bucket are required")
		fs.Usage()
		return ExitInvalidArgs
	}
	if *object == "" {
		*object = *hash + ".zip"
	}

	dir, err := archive.Resolve(*photosFolder, *hash)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, archive.ErrNotFound) {
			return ExitNotFound
		}
		return ExitGeneralError
	}

	ctx, cancel := signalContext()
	defer cancel()

	bkt, err := blob.OpenBucket(ctx, *bucket)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening bucket: %v\n", err)
		return ExitStorageError
	}
	defer bkt.Close()

	if !*force {
		exists, err := export.Exists(ctx, bkt, *object)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitStorageError
		}
		if exists {
			fmt.Fprintf(os.Stderr, "Error: %s already exists in %s (use -force to overwrite)\n", *object, *bucket)
			return ExitStorageError
		}
	}

	var opts export.Options
	if *showProgress {
		reporter := progress.NewReporter(progress.Options{
			Label:          fmt.Sprintf("Exporting %s to %s/%s", *hash, *bucket, *object),
			UpdateInterval: time.Second,
		})
		reporter.Start()
		defer reporter.Stop()
		opts.Wrap = func(w io.Writer) io.Writer { return reporter.Writer(w) }
	}

	streamer := &archive.Streamer{
		Command: *zipCommand,
		Logger:  newLogger(*debugLog),
	}

	stats, err := export.Export(ctx, streamer, bkt, dir, *object, opts)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "[photoarchive] Export interrupted, nothing was written")
			return ExitGeneralError
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, export.ErrBucket) {
			return ExitStorageError
		}
		return ExitGeneralError
	}

	fmt.Fprintf(os.Stderr, "[photoarchive] Exported %s (%d chunks) to %s/%s\n",
		progress.FormatBytes(stats.Bytes), stats.Chunks, *bucket, *object)
	return ExitSuccess
}
