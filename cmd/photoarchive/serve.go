package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ligustah/photoarchive/internal/config"
	"github.com/ligustah/photoarchive/internal/server"
)

// runServe resolves configuration and serves archives until interrupted.
func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)

	configPath := fs.String("config", "", "Path to YAML configuration file")
	photosFolder := fs.String("photos_folder", "", "Path to the folder where photos are stored")
	delay := fs.Int("delay", 0, "Seconds to wait between sending chunks of the zip archive")
	debugLog := fs.Bool("debug_log", false, "Enable debug logging")
	addr := fs.String("addr", "", "Listen address (default :8080)")
	zipCommand := fs.String("zip_command", "", "Archiver executable (default zip)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: photoarchive serve [options]

Serve photo archives over HTTP at /archive/<archive_hash>/.

If any option other than -config is given, environment variables
(PHOTOS_FOLDER, DELAY, DEBUG_LOG, LISTEN_ADDR, ZIP_COMMAND) are ignored.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return ExitSuccess
		}
		return ExitInvalidArgs
	}

	fromFlags := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name != "config" {
			fromFlags = true
		}
	})

	cfg, err := config.Resolve(*configPath, config.Config{
		PhotosFolder: *photosFolder,
		Delay:        time.Duration(*delay) * time.Second,
		DebugLog:     *debugLog,
		Addr:         *addr,
		ZipCommand:   *zipCommand,
	}, fromFlags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	log := newLogger(cfg.DebugLog)
	log.Debug().Stringer("settings", cfg).Msg("starting app")

	ctx, cancel := signalContext()
	defer cancel()

	if err := server.New(cfg, log).Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped")
		return ExitGeneralError
	}
	return ExitSuccess
}
