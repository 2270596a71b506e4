package build

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/fmforge/internal/config"
	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// fullFixture sets up schema + templates + one document covering the
// frontmatter-part / derived-from / template composition path end to end.
func fullFixture(t *testing.T, dir string) *config.Config {
	t.Helper()

	schemaPath := writeFile(t, dir, "schema.json", `{
		"type": "object",
		"properties": {
			"commands": {
				"type": "array",
				"x-frontmatter-part": true
			},
			"configs": {
				"type": "array",
				"x-derived-from": "c1",
				"x-derived-unique": true
			}
		},
		"x-template": "container.json",
		"x-template-items": "item.json"
	}`)
	writeFile(t, dir, "container.json", `{
		"tool": "{title}",
		"configs": "{configs}",
		"commands": "{@items}"
	}`)
	writeFile(t, dir, "item.json", `{
		"command": "{name}",
		"config": "{c1}"
	}`)
	writeFile(t, dir, "docs/tool.md", `---
title: forge
commands:
  - name: init
    c1: git
  - name: trace
    c1: debug
  - name: commit
    c1: git
---
Body text.
`)

	return &config.Config{
		Schema: schemaPath,
		Docs:   []string{filepath.Join(dir, "docs", "*.md")},
		Output: config.OutputConfig{
			Path:   filepath.Join(dir, "out", "tools.json"),
			Format: "json",
		},
	}
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg := fullFixture(t, dir)

	res, err := NewBuilder(discard(), nil).Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.NotEmpty(t, res.RunID)
	require.Len(t, res.Documents, 1)

	written, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, res.Output, string(written))

	var out map[string]any
	require.NoError(t, gojson.Unmarshal(written, &out))
	assert.Equal(t, "forge", out["tool"])
	assert.Equal(t, []any{"git", "debug"}, out["configs"])

	commands, ok := out["commands"].([]any)
	require.True(t, ok)
	require.Len(t, commands, 3)
	first, ok := commands[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "init", first["command"])
	assert.Equal(t, "git", first["config"])
}

func TestRunWithoutTemplateSerializesItems(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", `{
		"type": "object",
		"properties": {
			"commands": {
				"type": "array",
				"x-frontmatter-part": true
			}
		}
	}`)
	writeFile(t, dir, "docs/a.md", `---
commands:
  - name: one
  - name: two
---
`)

	cfg := &config.Config{
		Schema: schemaPath,
		Docs:   []string{filepath.Join(dir, "docs", "*.md")},
		Output: config.OutputConfig{Path: filepath.Join(dir, "out.json"), Format: "json"},
	}

	res, err := NewBuilder(discard(), nil).Run(context.Background(), cfg)
	require.NoError(t, err)

	var out []any
	require.NoError(t, gojson.Unmarshal([]byte(res.Output), &out))
	require.Len(t, out, 2)
	item, ok := out[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "one", item["name"])
}

func TestRunStrictValidationFails(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", `{
		"type": "object",
		"required": ["title"],
		"properties": {
			"title": {"type": "string"},
			"commands": {
				"type": "array",
				"x-frontmatter-part": true
			}
		}
	}`)
	writeFile(t, dir, "docs/a.md", `---
commands:
  - name: one
---
No title heading here, only a paragraph.
`)

	cfg := &config.Config{
		Schema:     schemaPath,
		Docs:       []string{filepath.Join(dir, "docs", "*.md")},
		Output:     config.OutputConfig{Path: filepath.Join(dir, "out.json"), Format: "json"},
		Validation: config.ValidationConfig{Enabled: true, Strict: true},
	}

	res, err := NewBuilder(discard(), nil).Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, fferrors.HasCategory(err, fferrors.CategoryValidation))
	assert.Equal(t, StatusFailed, res.Status)
	assert.NotEmpty(t, res.Issues)
}

func TestRunNonStrictValidationWarns(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.json", `{
		"type": "object",
		"required": ["owner"],
		"properties": {
			"owner": {"type": "string"},
			"commands": {
				"type": "array",
				"x-frontmatter-part": true
			}
		}
	}`)
	writeFile(t, dir, "docs/a.md", `---
commands:
  - name: one
---
No owner field.
`)

	cfg := &config.Config{
		Schema:     schemaPath,
		Docs:       []string{filepath.Join(dir, "docs", "*.md")},
		Output:     config.OutputConfig{Path: filepath.Join(dir, "out.json"), Format: "json"},
		Validation: config.ValidationConfig{Enabled: true, Strict: false},
	}

	res, err := NewBuilder(discard(), nil).Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.NotEmpty(t, res.Issues)
}

func TestRunMissingSchemaFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Schema: filepath.Join(dir, "absent.json"),
		Docs:   []string{filepath.Join(dir, "*.md")},
		Output: config.OutputConfig{Path: filepath.Join(dir, "out.json"), Format: "json"},
	}

	res, err := NewBuilder(discard(), nil).Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Equal(t, StatusFailed, res.Status)
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	cfg := fullFixture(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewBuilder(discard(), nil).Run(ctx, cfg)
	require.Error(t, err)
	assert.Equal(t, StatusCancelled, res.Status)
}
