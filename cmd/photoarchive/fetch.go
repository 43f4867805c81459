package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	archivehttp "github.com/ligustah/photoarchive/internal/http"
	"github.com/ligustah/photoarchive/internal/progress"
	"github.com/ligustah/photoarchive/internal/verify"
)

// runFetch downloads an archive from a running server to a local file.
func runFetch(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)

	url := fs.String("url", "http://localhost:8080", "Server base URL")
	hash := fs.String("hash", "", "Archive hash (required)")
	output := fs.String("output", "", "Output file path (default <hash>.zip)")
	doVerify := fs.Bool("verify", false, "Check every archive entry after download")
	retryAttempts := fs.Int("retry-attempts", 3, "Max retry attempts before the body starts")
	retryBackoff := fs.Duration("retry-backoff", time.Second, "Initial retry backoff")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: photoarchive fetch [options]

Download an archive from a photoarchive server.
A download that breaks off midway is removed, never resumed.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return ExitSuccess
		}
		return ExitInvalidArgs
	}

	if *hash == "" {
		fmt.Fprintln(os.Stderr, "Error: -hash is required")
		fs.Usage()
		return ExitInvalidArgs
	}
	if *output == "" {
		*output = *hash + ".zip"
	}

	ctx, cancel := signalContext()
	defer cancel()

	opts := archivehttp.DefaultOptions()
	opts.RetryAttempts = *retryAttempts
	opts.RetryBackoff = *retryBackoff
	client := archivehttp.NewClient(opts)

	f, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating file: %v\n", err)
		return ExitGeneralError
	}

	start := time.Now()
	n, err := client.DownloadArchive(ctx, *url, *hash, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(*output)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, archivehttp.ErrNotFound) {
			return ExitNotFound
		}
		return ExitGeneralError
	}

	fmt.Fprintf(os.Stderr, "[photoarchive] Downloaded %s to %s in %s\n",
		progress.FormatBytes(n), *output, progress.FormatDuration(time.Since(start)))

	if *doVerify {
		return verifyFile(*output)
	}
	return ExitSuccess
}

func verifyFile(path string) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	entries, err := verify.Archive(f, info.Size(), false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[photoarchive] Verification FAILED: %v\n", err)
		return ExitValidationFailed
	}

	var total int64
	for _, e := range entries {
		total += e.Size
	}
	fmt.Fprintf(os.Stderr, "[photoarchive] Verified %d entries (%s uncompressed)\n",
		len(entries), progress.FormatBytes(total))
	return ExitSuccess
}
