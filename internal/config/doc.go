// Package config defines configuration structures for the photoarchive
// server.
//
// Configuration can be provided via:
//   - YAML configuration file
//   - Command-line flags
//   - Environment variables (PHOTOS_FOLDER, DELAY, DEBUG_LOG, LISTEN_ADDR, ZIP_COMMAND)
//
// Flags and environment are alternatives: when any command-line value is
// given, the environment is not consulted.
//
// # Structure
//
//	type Config struct {
//	    PhotosFolder    string
//	    Delay           time.Duration
//	    DebugLog        bool
//	    Addr            string
//	    ZipCommand      string
//	    ShutdownTimeout time.Duration
//	}
package config
