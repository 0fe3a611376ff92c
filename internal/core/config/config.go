// Package config loads the gauge configuration: TOML file first, then
// GAUGE_* environment overrides on top.
package config

import (
	"fmt"
	"os"
	"time"

	"gauge/internal/core/errors"
	"gauge/internal/engine/grammar"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// Paths are the default scan roots when none are given on the command
	// line.
	Paths []string `toml:"paths"`

	Scan          ScanConfig                `toml:"scan"`
	Exclude       ExcludeConfig             `toml:"exclude"`
	Languages     map[string]LanguageConfig `toml:"languages"`
	History       HistoryConfig             `toml:"history"`
	Watch         WatchConfig               `toml:"watch"`
	Observability ObservabilityConfig       `toml:"observability"`
}

type ScanConfig struct {
	// Workers is the analysis worker count; 0 means one per logical CPU.
	Workers             int     `toml:"workers"`
	IncludeTests        bool    `toml:"include_tests"`
	ThrottleFilesPerSec float64 `toml:"throttle_files_per_sec"`
	SkipGenerated       bool    `toml:"skip_generated"`
}

type ExcludeConfig struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

// LanguageConfig overrides one registered language.
type LanguageConfig struct {
	Enabled    *bool    `toml:"enabled"`
	Extensions []string `toml:"extensions"`
	Filenames  []string `toml:"filenames"`
}

type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type WatchConfig struct {
	DebounceMS int `toml:"debounce_ms"`
}

func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

type ObservabilityConfig struct {
	Enabled       bool   `toml:"enabled"`
	Port          int    `toml:"port"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
	EnableTracing bool   `toml:"enable_tracing"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			SkipGenerated: true,
		},
		Exclude: ExcludeConfig{
			Dirs: []string{".git", "node_modules", "vendor", "dist", "target", "__pycache__"},
		},
		History: HistoryConfig{
			Path: "gauge.db",
		},
		Watch: WatchConfig{
			DebounceMS: 500,
		},
		Observability: ObservabilityConfig{
			Port: 9090,
		},
	}
}

// Load reads the file at path on top of the defaults and applies environment
// overrides last. An empty path skips the file layer entirely; a named file
// that does not exist is a config error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeConfig,
				fmt.Sprintf("reading config file %q", path))
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, errors.CodeConfig,
				fmt.Sprintf("parsing config file %q", path))
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Scan.Workers < 0 {
		return errors.New(errors.CodeConfig,
			fmt.Sprintf("scan.workers must be >= 0, got %d", c.Scan.Workers))
	}
	if c.Scan.ThrottleFilesPerSec < 0 {
		return errors.New(errors.CodeConfig,
			fmt.Sprintf("scan.throttle_files_per_sec must be >= 0, got %f", c.Scan.ThrottleFilesPerSec))
	}
	if c.Watch.DebounceMS < 0 {
		return errors.New(errors.CodeConfig,
			fmt.Sprintf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMS))
	}
	if c.Observability.Port < 1 || c.Observability.Port > 65535 {
		return errors.New(errors.CodeConfig,
			fmt.Sprintf("observability.port %d out of range", c.Observability.Port))
	}
	return nil
}

// GrammarOverrides converts the [languages] section into registry overrides.
func (c *Config) GrammarOverrides() map[string]grammar.Override {
	if len(c.Languages) == 0 {
		return nil
	}
	overrides := make(map[string]grammar.Override, len(c.Languages))
	for id, lc := range c.Languages {
		overrides[id] = grammar.Override{
			Enabled:    lc.Enabled,
			Extensions: lc.Extensions,
			Filenames:  lc.Filenames,
		}
	}
	return overrides
}
