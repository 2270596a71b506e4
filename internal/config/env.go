package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment overrides use the FMFORGE_ prefix and win over file values.
// Process environment beats .env files; .env loading itself happens in cmd
// before Load is called.
const envPrefix = "FMFORGE_"

func applyEnvOverrides(cfg *Config) {
	if v := getenv("SCHEMA"); v != "" {
		cfg.Schema = v
	}
	if v := getenv("DOCS"); v != "" {
		cfg.Docs = splitList(v)
	}
	if v := getenv("OUTPUT_PATH"); v != "" {
		cfg.Output.Path = v
	}
	if v := getenv("OUTPUT_FORMAT"); v != "" {
		cfg.Output.Format = v
	}
	if v := getenv("VALIDATION_ENABLED"); v != "" {
		cfg.Validation.Enabled = parseBool(v, cfg.Validation.Enabled)
	}
	if v := getenv("VALIDATION_STRICT"); v != "" {
		cfg.Validation.Strict = parseBool(v, cfg.Validation.Strict)
	}
	if v := getenv("PROCESSING_PARALLEL"); v != "" {
		cfg.Processing.Parallel = parseBool(v, cfg.Processing.Parallel)
	}
	if v := getenv("PROCESSING_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Processing.Workers = n
		}
	}
	if v := getenv("WATCH_DEBOUNCE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Watch.Debounce = d
		}
	}
	if v := getenv("WATCH_METRICS_ADDR"); v != "" {
		cfg.Watch.MetricsAddr = v
	}
	if v := getenv("WATCH_STATE_PATH"); v != "" {
		cfg.Watch.StatePath = v
	}
}

func getenv(key string) string {
	return os.Getenv(envPrefix + key)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseBool(v string, fallback bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}
