// Package progress provides progress reporting for archive transfers.
//
// Archive streams have no known total size, so the reporter shows bytes
// transferred, chunk count, and speed rather than a percentage.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{
//	    Label:  "Exporting abc123",
//	    Output: os.Stderr,
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	w := reporter.Writer(dst) // counts every write
//
// # Output Format
//
//	[photoarchive] Exporting abc123
//	[photoarchive] Transferred: 12.40 MB | Chunks: 85 | Speed: 3.10 MB/s
//	[photoarchive] Total: 48.00 MB in 15s | Average speed: 3.20 MB/s
package progress
