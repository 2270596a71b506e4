// Package config loads and normalizes the fmforge configuration file, with
// environment variable overrides layered on top.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
)

// Config is the top-level configuration.
type Config struct {
	// Schema is the path to the directive-annotated schema file (JSON or YAML).
	Schema string `yaml:"schema"`

	// Docs lists glob patterns for the markdown source documents.
	Docs []string `yaml:"docs"`

	Output     OutputConfig     `yaml:"output"`
	Validation ValidationConfig `yaml:"validation"`
	Processing ProcessingConfig `yaml:"processing"`
	Watch      WatchConfig      `yaml:"watch"`
}

// OutputConfig controls where and how rendered output is written.
type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// ValidationConfig controls pre-pipeline document validation.
type ValidationConfig struct {
	Enabled bool `yaml:"enabled"`
	// Strict turns validation issues into build failures instead of warnings.
	Strict bool `yaml:"strict"`
}

// ProcessingConfig controls pipeline execution.
type ProcessingConfig struct {
	Parallel bool `yaml:"parallel"`
	Workers  int  `yaml:"workers"`
}

// WatchConfig controls continuous-rebuild mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	// MetricsAddr exposes Prometheus metrics when non-empty (e.g. ":9090").
	MetricsAddr string `yaml:"metrics_addr"`
	// StatePath is the SQLite build-state file used to skip unchanged rebuilds.
	StatePath string `yaml:"state_path"`
}

// Load reads the configuration file, applies environment overrides, and
// normalizes the result.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fferrors.WrapError(err, fferrors.CategoryConfig, fmt.Sprintf("read config %s", path)).Build()
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(content, cfg); err != nil {
		return nil, fferrors.WrapError(err, fferrors.CategoryConfig, fmt.Sprintf("parse config %s", path)).Build()
	}

	applyEnvOverrides(cfg)
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize fills defaults and validates the configuration.
func (c *Config) Normalize() error {
	if c.Schema == "" {
		return fferrors.ConfigError("schema path is required").Build()
	}
	if len(c.Docs) == 0 {
		return fferrors.ConfigError("at least one docs glob is required").Build()
	}
	if c.Output.Format == "" {
		c.Output.Format = "json"
	}
	if c.Output.Path == "" {
		c.Output.Path = "output." + extensionFor(c.Output.Format)
	}
	if c.Processing.Workers < 0 {
		return fferrors.ConfigError("processing.workers must not be negative").Build()
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = 2 * time.Second
	}
	return nil
}

func extensionFor(format string) string {
	switch format {
	case "yaml", "yml":
		return "yaml"
	case "xml":
		return "xml"
	case "markdown", "md":
		return "md"
	default:
		return "json"
	}
}
