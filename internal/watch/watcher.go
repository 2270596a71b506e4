// Package watch runs continuous rebuilds: an fsnotify watcher over the
// schema, template, and document directories triggers debounced builds, with
// an optional state store to skip rebuilds when no content hash changed.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/fmforge/internal/build"
	"git.home.luguber.info/inful/fmforge/internal/config"
	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
	"git.home.luguber.info/inful/fmforge/internal/loader"
	"git.home.luguber.info/inful/fmforge/internal/metrics"
	"git.home.luguber.info/inful/fmforge/internal/schema"
	"git.home.luguber.info/inful/fmforge/internal/state"
)

// Watcher rebuilds on file changes.
type Watcher struct {
	cfg      *config.Config
	builder  *build.Builder
	store    *state.Store   // nil disables hash-based skip
	registry *prom.Registry // nil disables the metrics endpoint
	logger   *slog.Logger
}

// New creates a Watcher. The store may be nil, in which case every debounced
// change triggers a rebuild. The registry should be the one the builder's
// recorder registers on; it is served at Watch.MetricsAddr when both are set.
func New(cfg *config.Config, builder *build.Builder, store *state.Store, registry *prom.Registry, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{cfg: cfg, builder: builder, store: store, registry: registry, logger: logger}
}

// Run performs an initial build, then blocks rebuilding on changes until ctx
// is cancelled. Build failures are logged and watching continues; only watcher
// infrastructure failures end the loop.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fferrors.WrapError(err, fferrors.CategoryFileSystem, "create file watcher").Build()
	}
	defer fsw.Close()

	for _, dir := range w.watchDirs() {
		if err := fsw.Add(dir); err != nil {
			w.logger.Warn("cannot watch directory", slog.String("dir", dir), slog.String("error", err.Error()))
		}
	}

	if w.cfg.Watch.MetricsAddr != "" && w.registry != nil {
		w.serveMetrics(ctx)
	}

	w.rebuild(ctx)

	var debounce *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(event) {
				continue
			}
			// The output file may live inside a watched directory; writing
			// it must not retrigger the build.
			if filepath.Clean(event.Name) == filepath.Clean(w.cfg.Output.Path) {
				continue
			}
			w.logger.Debug("change detected", slog.String("file", event.Name), slog.String("op", event.Op.String()))
			if debounce == nil {
				debounce = time.NewTimer(w.cfg.Watch.Debounce)
				fire = debounce.C
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(w.cfg.Watch.Debounce)
			}

		case <-fire:
			debounce = nil
			fire = nil
			if w.store != nil && !w.changed(ctx) {
				w.logger.Info("no content changes, skipping rebuild")
				continue
			}
			w.rebuild(ctx)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

// watchDirs collects the directories to monitor: the schema's directory
// (which also holds templates) and the static prefix of each docs glob.
func (w *Watcher) watchDirs() []string {
	seen := map[string]bool{}
	var dirs []string
	add := func(dir string) {
		if dir == "" {
			dir = "."
		}
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	add(filepath.Dir(w.cfg.Schema))
	for _, pattern := range w.cfg.Docs {
		add(globDir(pattern))
	}
	return dirs
}

// globDir returns the longest directory prefix of a glob pattern with no
// meta characters.
func globDir(pattern string) string {
	dir := pattern
	for strings.ContainsAny(dir, "*?[") {
		parent := filepath.Dir(dir)
		if parent == dir {
			return "."
		}
		dir = parent
	}
	return dir
}

func relevantEvent(event fsnotify.Event) bool {
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

// changed compares content hashes of the schema, templates, and documents
// against the state store, recording the new hashes as a side effect.
func (w *Watcher) changed(ctx context.Context) bool {
	current := map[string]string{}
	for _, path := range w.contentPaths() {
		content, err := os.ReadFile(path)
		if err != nil {
			// Unreadable inputs force a rebuild so the error surfaces there.
			return true
		}
		current[path] = state.HashContent(content)
	}

	changedPaths, err := w.store.ChangedPaths(ctx, current)
	if err != nil {
		w.logger.Warn("state comparison failed", slog.String("error", err.Error()))
		return true
	}
	for path, hash := range current {
		if err := w.store.RecordDocument(ctx, path, hash); err != nil {
			w.logger.Warn("state update failed", slog.String("error", err.Error()))
		}
	}
	return len(changedPaths) > 0
}

// contentPaths lists every file whose hash participates in skip evaluation.
func (w *Watcher) contentPaths() []string {
	paths := []string{w.cfg.Schema}

	if _, tree, err := loader.LoadSchema(w.cfg.Schema); err == nil {
		for _, kind := range []schema.Kind{schema.KindTemplate, schema.KindTemplateItems} {
			if d, err := tree.DirectiveFor(kind); err == nil && d != nil {
				paths = append(paths, loader.ResolveTemplatePath(w.cfg.Schema, d.SourcePath))
			}
		}
	}

	if docs, err := loader.Discover(w.cfg.Docs); err == nil {
		paths = append(paths, docs...)
	}
	return paths
}

func (w *Watcher) rebuild(ctx context.Context) {
	res, err := w.builder.Run(ctx, w.cfg)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		w.logger.Error("build failed", slog.String("error", err.Error()))
		return
	}
	if w.store != nil {
		run := state.Run{
			RunID:     res.RunID,
			StartedAt: res.StartTime,
			Duration:  res.Duration,
			Documents: len(res.Documents),
			Success:   res.Status == build.StatusSuccess,
		}
		if err := w.store.RecordRun(ctx, run); err != nil {
			w.logger.Warn("run record failed", slog.String("error", err.Error()))
		}
	}
}

// serveMetrics exposes the Prometheus endpoint for watch mode.
func (w *Watcher) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(w.registry))
	server := &http.Server{Addr: w.cfg.Watch.MetricsAddr, Handler: mux}

	go func() {
		w.logger.Info("metrics endpoint listening", slog.String("addr", w.cfg.Watch.MetricsAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.logger.Error("metrics server failed", slog.String("error", err.Error()))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
}
