// Package config loads kwmatch settings from a YAML file and the environment.
//
// Precedence, lowest to highest: defaults, the config file, environment
// variables. Command-line flags are applied on top by the CLI.
package config

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DirName is the per-project state directory.
const DirName = ".kwmatch"

// Config holds all configuration for kwmatch.
type Config struct {
	// Matching
	Logic   bool `yaml:"logic" env:"KWMATCH_LOGIC"`
	Workers int  `yaml:"workers" env:"KWMATCH_WORKERS"` // 0 = GOMAXPROCS

	// Pattern source: a file (one pattern per line) or a stored set.
	PatternsFile string `yaml:"patterns_file" env:"KWMATCH_PATTERNS"`
	PatternSet   string `yaml:"pattern_set" env:"KWMATCH_SET"`

	// Daemon
	DBPath     string `yaml:"db_path" env:"KWMATCH_DB"`
	SocketPath string `yaml:"socket_path" env:"KWMATCH_SOCKET"`
	Watch      bool   `yaml:"watch" env:"KWMATCH_WATCH"`

	LogLevel string `yaml:"log_level" env:"KWMATCH_LOG_LEVEL"`

	// Root is the project root relative paths resolve against. Not read from YAML.
	Root string `yaml:"-"`
}

// DefaultConfig returns the default configuration for a project root.
func DefaultConfig(root string) *Config {
	return &Config{
		Logic:      true,
		Watch:      true,
		DBPath:     filepath.Join(root, DirName, "kwmatch.db"),
		SocketPath: SocketPath(root),
		LogLevel:   "info",
		Root:       root,
	}
}

// SocketPath returns the Unix socket path for a given project root.
// Format: /tmp/kwmatch-{first12hex}.sock
func SocketPath(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	h := sha256.Sum256([]byte(abs))
	return fmt.Sprintf("/tmp/kwmatch-%x.sock", h[:6])
}

// Load loads configuration for root from file and environment.
// A missing config file is not an error.
func Load(root string) (*Config, error) {
	cfg := DefaultConfig(root)

	path := configPath(root)
	if err := loadFromFile(cfg, path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// configPath returns the config file path: $KWMATCH_CONFIG, else
// <root>/.kwmatch/config.yaml.
func configPath(root string) string {
	if path := os.Getenv("KWMATCH_CONFIG"); path != "" {
		return path
	}
	return filepath.Join(root, DirName, "config.yaml")
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("KWMATCH_LOGIC"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("invalid KWMATCH_LOGIC: %w", err)
		}
		cfg.Logic = b
	}

	if v := os.Getenv("KWMATCH_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid KWMATCH_WORKERS: %w", err)
		}
		cfg.Workers = n
	}

	if v := os.Getenv("KWMATCH_PATTERNS"); v != "" {
		cfg.PatternsFile = v
	}
	if v := os.Getenv("KWMATCH_SET"); v != "" {
		cfg.PatternSet = v
	}
	if v := os.Getenv("KWMATCH_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("KWMATCH_SOCKET"); v != "" {
		cfg.SocketPath = v
	}

	if v := os.Getenv("KWMATCH_WATCH"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("invalid KWMATCH_WATCH: %w", err)
		}
		cfg.Watch = b
	}

	if v := os.Getenv("KWMATCH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%q (use true/false)", v)
	}
}

// resolvePaths makes file paths absolute relative to Root.
func (c *Config) resolvePaths() {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(c.Root, p)
	}
	c.PatternsFile = abs(c.PatternsFile)
	c.DBPath = abs(c.DBPath)
	c.SocketPath = abs(c.SocketPath)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative")
	}
	if c.PatternsFile != "" && c.PatternSet != "" {
		return fmt.Errorf("patterns_file and pattern_set are mutually exclusive")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.SocketPath == "" {
		return fmt.Errorf("socket_path is required")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return l, nil
}
