// Package config loads the tool configuration from YAML with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all clingexplaid configuration.
type Config struct {
	// Solver settings
	Solver SolverConfig `yaml:"solver"`

	// MUC computation settings
	MUC MUCConfig `yaml:"muc"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Interactive terminal UI
	TUI TUIConfig `yaml:"tui"`
}

// SolverConfig configures the solving backend.
type SolverConfig struct {
	// EvalTimeout bounds a single evaluation, e.g. "30s".
	EvalTimeout string `yaml:"eval_timeout"`
}

// MUCConfig configures minimal unsatisfiable core computation.
type MUCConfig struct {
	// MaxCores limits enumeration; 0 means all cores.
	MaxCores int `yaml:"max_cores"`
}

// LoggingConfig configures the category file loggers.
type LoggingConfig struct {
	// Dir receives per-category log files; empty disables logging.
	Dir string `yaml:"dir"`
	// Verbose mirrors log output to stderr.
	Verbose bool `yaml:"verbose"`
}

// TUIConfig configures the interactive mode.
type TUIConfig struct {
	// WatchFiles re-runs the computation when an input file changes.
	WatchFiles bool `yaml:"watch_files"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Solver: SolverConfig{
			EvalTimeout: "30s",
		},
		MUC: MUCConfig{
			MaxCores: 0,
		},
		Logging: LoggingConfig{
			Dir:     "",
			Verbose: false,
		},
		TUI: TUIConfig{
			WatchFiles: true,
		},
	}
}

// Load reads configuration from a YAML file, falling back to defaults
// when the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("CLINGEXPLAID_LOG_DIR"); dir != "" {
		c.Logging.Dir = dir
	}
	if timeout := os.Getenv("CLINGEXPLAID_EVAL_TIMEOUT"); timeout != "" {
		c.Solver.EvalTimeout = timeout
	}
	if os.Getenv("CLINGEXPLAID_VERBOSE") == "1" {
		c.Logging.Verbose = true
	}
}

// EvalTimeout parses the solver timeout, falling back to the default
// on an empty or malformed value.
func (c *Config) EvalTimeout() time.Duration {
	d, err := time.ParseDuration(c.Solver.EvalTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// DefaultPath returns the config file location: .clingexplaid.yaml in
// the working directory when present, the user config directory
// otherwise.
func DefaultPath() string {
	if _, err := os.Stat(LocalConfigName); err == nil {
		return LocalConfigName
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return LocalConfigName
	}
	return filepath.Join(home, ".config", "clingexplaid", "config.yaml")
}

// LocalConfigName is the per-project config file looked up in the
// working directory.
const LocalConfigName = ".clingexplaid.yaml"
