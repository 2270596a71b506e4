package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/fmforge/internal/build"
	"git.home.luguber.info/inful/fmforge/internal/config"
	"git.home.luguber.info/inful/fmforge/internal/state"
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

func fixtureConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
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
---
`)
	return &config.Config{
		Schema: schemaPath,
		Docs:   []string{filepath.Join(dir, "docs", "*.md")},
		Output: config.OutputConfig{Path: filepath.Join(dir, "out", "result.json"), Format: "json"},
		Watch:  config.WatchConfig{Debounce: 50 * time.Millisecond},
	}
}

func TestGlobDir(t *testing.T) {
	assert.Equal(t, "docs", globDir("docs/*.md"))
	assert.Equal(t, "content", globDir("content/**/*.md"))
	assert.Equal(t, ".", globDir("*.md"))
	assert.Equal(t, "docs/tools", globDir("docs/tools/guide-?.md"))
}

func TestRelevantEvent(t *testing.T) {
	assert.True(t, relevantEvent(fsnotify.Event{Op: fsnotify.Write}))
	assert.True(t, relevantEvent(fsnotify.Event{Op: fsnotify.Create}))
	assert.True(t, relevantEvent(fsnotify.Event{Op: fsnotify.Remove}))
	assert.False(t, relevantEvent(fsnotify.Event{Op: fsnotify.Chmod}))
}

func TestWatchDirsDeduplicated(t *testing.T) {
	cfg := &config.Config{
		Schema: "specs/schema.json",
		Docs:   []string{"specs/*.md", "docs/*.md", "docs/extra/*.md"},
	}
	w := New(cfg, nil, nil, nil, discard())

	assert.Equal(t, []string{"specs", "docs", "docs/extra"}, w.watchDirs())
}

func TestChangedTracksHashes(t *testing.T) {
	dir := t.TempDir()
	cfg := fixtureConfig(t, dir)

	store, err := state.NewStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	w := New(cfg, nil, store, nil, discard())
	ctx := context.Background()

	// First pass: everything is new.
	assert.True(t, w.changed(ctx))
	// Nothing modified since.
	assert.False(t, w.changed(ctx))

	writeFile(t, dir, "docs/a.md", `---
commands:
  - name: two
---
`)
	assert.True(t, w.changed(ctx))
	assert.False(t, w.changed(ctx))
}

func TestRunInitialBuildAndRebuild(t *testing.T) {
	dir := t.TempDir()
	cfg := fixtureConfig(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(cfg, build.NewBuilder(discard(), nil), nil, nil, discard())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Initial build writes the output file.
	require.Eventually(t, func() bool {
		_, err := os.Stat(cfg.Output.Path)
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	before, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)

	writeFile(t, dir, "docs/a.md", `---
commands:
  - name: rebuilt
---
`)

	require.Eventually(t, func() bool {
		after, err := os.ReadFile(cfg.Output.Path)
		return err == nil && string(after) != string(before)
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
