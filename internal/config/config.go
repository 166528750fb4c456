// Package config loads shaderscope.yaml and applies environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where Load looks when no path is given.
const DefaultConfigPath = "shaderscope.yaml"

// Config is the root configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Scan    ScanConfig    `yaml:"scan"`
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig controls graph building and suggestion ranking.
type EngineConfig struct {
	// DirectParentsOnly attaches each shader only under non-redundant
	// declared bases in the navigation tree.
	DirectParentsOnly bool `yaml:"direct_parents_only"`

	// SuggestionCap bounds each suggestion bucket. Zero keeps the
	// resolver default.
	SuggestionCap int `yaml:"suggestion_cap"`
}

// ScanConfig controls where parsed-unit JSON comes from and how it is
// loaded.
type ScanConfig struct {
	// UnitPaths are files or directories of unit JSON documents produced
	// by the external parser.
	UnitPaths []string `yaml:"unit_paths"`

	MaxConcurrency int `yaml:"max_concurrency"`

	// Debounce is how long filesystem events must settle before the
	// watcher rebuilds, e.g. "500ms".
	Debounce string `yaml:"debounce"`
}

// LoggingConfig mirrors the logging section read by internal/logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			DirectParentsOnly: true,
			SuggestionCap:     8,
		},
		Scan: ScanConfig{
			UnitPaths:      []string{"units"},
			MaxConcurrency: 8,
			Debounce:       "500ms",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
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

// applyEnvOverrides applies SHADERSCOPE_* environment variables on top
// of file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SHADERSCOPE_DIRECT_PARENTS_ONLY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Engine.DirectParentsOnly = b
		}
	}
	if v := os.Getenv("SHADERSCOPE_SUGGESTION_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Engine.SuggestionCap = n
		}
	}
	if v := os.Getenv("SHADERSCOPE_UNIT_PATHS"); v != "" {
		c.Scan.UnitPaths = splitPaths(v)
	}
	if v := os.Getenv("SHADERSCOPE_MAX_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Scan.MaxConcurrency = n
		}
	}
	if v := os.Getenv("SHADERSCOPE_DEBOUNCE"); v != "" {
		c.Scan.Debounce = v
	}
	if v := os.Getenv("SHADERSCOPE_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = b
		}
	}
	if v := os.Getenv("SHADERSCOPE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func splitPaths(v string) []string {
	parts := strings.Split(v, string(os.PathListSeparator))
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DebounceDuration parses Scan.Debounce, falling back to 500ms on empty
// or unparsable values.
func (c *Config) DebounceDuration() time.Duration {
	if c.Scan.Debounce == "" {
		return 500 * time.Millisecond
	}
	d, err := time.ParseDuration(c.Scan.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// Validate checks for values that would misbehave at runtime.
func (c *Config) Validate() error {
	if c.Engine.SuggestionCap < 0 {
		return fmt.Errorf("engine.suggestion_cap must not be negative")
	}
	if c.Scan.MaxConcurrency < 0 {
		return fmt.Errorf("scan.max_concurrency must not be negative")
	}
	if c.Scan.Debounce != "" {
		if _, err := time.ParseDuration(c.Scan.Debounce); err != nil {
			return fmt.Errorf("scan.debounce: %w", err)
		}
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error")
	}
	return nil
}
