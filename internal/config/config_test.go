package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fmforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
schema: schema.json
docs:
  - "docs/**/*.md"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "schema.json", cfg.Schema)
	assert.Equal(t, []string{"docs/**/*.md"}, cfg.Docs)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "output.json", cfg.Output.Path)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
schema: specs/tools.yaml
docs:
  - "content/*.md"
  - "extra/*.md"
output:
  path: dist/tools.yaml
  format: yaml
validation:
  enabled: true
  strict: true
processing:
  parallel: true
  workers: 4
watch:
  debounce: 500ms
  metrics_addr: ":9090"
  state_path: .fmforge/state.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "specs/tools.yaml", cfg.Schema)
	assert.Len(t, cfg.Docs, 2)
	assert.Equal(t, "dist/tools.yaml", cfg.Output.Path)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.True(t, cfg.Validation.Enabled)
	assert.True(t, cfg.Validation.Strict)
	assert.True(t, cfg.Processing.Parallel)
	assert.Equal(t, 4, cfg.Processing.Workers)
	assert.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, ":9090", cfg.Watch.MetricsAddr)
	assert.Equal(t, ".fmforge/state.db", cfg.Watch.StatePath)
}

func TestLoadMissingSchema(t *testing.T) {
	path := writeConfig(t, `
docs:
  - "docs/*.md"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, fferrors.HasCategory(err, fferrors.CategoryConfig))
}

func TestLoadMissingDocs(t *testing.T) {
	path := writeConfig(t, `
schema: schema.json
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, fferrors.HasCategory(err, fferrors.CategoryConfig))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, fferrors.HasCategory(err, fferrors.CategoryConfig))
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
schema: schema.json
docs:
  - "docs/*.md"
output:
  format: json
`)

	t.Setenv("FMFORGE_OUTPUT_FORMAT", "xml")
	t.Setenv("FMFORGE_DOCS", "a/*.md, b/*.md")
	t.Setenv("FMFORGE_PROCESSING_PARALLEL", "true")
	t.Setenv("FMFORGE_PROCESSING_WORKERS", "8")
	t.Setenv("FMFORGE_WATCH_DEBOUNCE", "250ms")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "xml", cfg.Output.Format)
	assert.Equal(t, []string{"a/*.md", "b/*.md"}, cfg.Docs)
	assert.True(t, cfg.Processing.Parallel)
	assert.Equal(t, 8, cfg.Processing.Workers)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, "output.xml", cfg.Output.Path)
}

func TestNegativeWorkersRejected(t *testing.T) {
	cfg := &Config{
		Schema:     "schema.json",
		Docs:       []string{"docs/*.md"},
		Processing: ProcessingConfig{Workers: -1},
	}

	err := cfg.Normalize()
	require.Error(t, err)
	assert.True(t, fferrors.HasCategory(err, fferrors.CategoryConfig))
}
