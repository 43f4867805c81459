package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines configuration for the photoarchive server.
type Config struct {
	PhotosFolder    string        `yaml:"photos_folder"`
	Delay           time.Duration `yaml:"delay"`
	DebugLog        bool          `yaml:"debug_log"`
	Addr            string        `yaml:"addr"`
	ZipCommand      string        `yaml:"zip_command"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Addr:            ":8080",
		ZipCommand:      "zip",
		ShutdownTimeout: 10 * time.Second,
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	PhotosFolder    string `yaml:"photos_folder"`
	Delay           string `yaml:"delay"`
	DebugLog        bool   `yaml:"debug_log"`
	Addr            string `yaml:"addr"`
	ZipCommand      string `yaml:"zip_command"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.PhotosFolder != "" {
		cfg.PhotosFolder = yc.PhotosFolder
	}
	if yc.Delay != "" {
		d, err := parseSeconds(yc.Delay)
		if err != nil {
			return Config{}, fmt.Errorf("parse delay: %w", err)
		}
		cfg.Delay = d
	}
	cfg.DebugLog = yc.DebugLog
	if yc.Addr != "" {
		cfg.Addr = yc.Addr
	}
	if yc.ZipCommand != "" {
		cfg.ZipCommand = yc.ZipCommand
	}
	if yc.ShutdownTimeout != "" {
		d, err := time.ParseDuration(yc.ShutdownTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse shutdown_timeout: %w", err)
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// DELAY is given in whole seconds.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("PHOTOS_FOLDER"); v != "" {
		c.PhotosFolder = v
	}
	if v := os.Getenv("DELAY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse DELAY: %w", err)
		}
		c.Delay = time.Duration(n) * time.Second
	}
	if v := os.Getenv("DEBUG_LOG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse DEBUG_LOG: %w", err)
		}
		c.DebugLog = b
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("ZIP_COMMAND"); v != "" {
		c.ZipCommand = v
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.PhotosFolder == "" {
		return errors.New("config: path to photos is not specified")
	}
	if c.Delay < 0 {
		return errors.New("config: delay must not be negative")
	}
	if c.Addr == "" {
		return errors.New("config: addr is required")
	}
	if c.ZipCommand == "" {
		return errors.New("config: zip_command is required")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.PhotosFolder != "" {
		c.PhotosFolder = override.PhotosFolder
	}
	if override.Delay != 0 {
		c.Delay = override.Delay
	}
	if override.DebugLog {
		c.DebugLog = override.DebugLog
	}
	if override.Addr != "" {
		c.Addr = override.Addr
	}
	if override.ZipCommand != "" {
		c.ZipCommand = override.ZipCommand
	}
	if override.ShutdownTimeout != 0 {
		c.ShutdownTimeout = override.ShutdownTimeout
	}
	return c
}

// Resolve builds the effective configuration.
//
// Defaults are overlaid by the YAML file at path, if path is non-empty.
// Then, if any command-line value was given (fromFlags is true), flags
// are applied and the environment is ignored; otherwise the environment
// is applied.
func Resolve(path string, flags Config, fromFlags bool) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		cfg, err = LoadFromFile(path)
		if err != nil {
			return Config{}, err
		}
	}

	if fromFlags {
		cfg = cfg.Merge(flags)
	} else if err := cfg.LoadFromEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// String renders the settings for startup logging.
func (c Config) String() string {
	return fmt.Sprintf("photos_folder: %s, delay: %s, debug_log: %t, addr: %s, zip_command: %s",
		c.PhotosFolder, c.Delay, c.DebugLog, c.Addr, c.ZipCommand)
}

// parseSeconds accepts either a duration string or a bare number of seconds.
func parseSeconds(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}
