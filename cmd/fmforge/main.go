package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/fmforge/internal/build"
	"git.home.luguber.info/inful/fmforge/internal/config"
	"git.home.luguber.info/inful/fmforge/internal/document"
	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
	"git.home.luguber.info/inful/fmforge/internal/loader"
	"git.home.luguber.info/inful/fmforge/internal/metrics"
	"git.home.luguber.info/inful/fmforge/internal/schema"
	"git.home.luguber.info/inful/fmforge/internal/state"
	"git.home.luguber.info/inful/fmforge/internal/validate"
	"git.home.luguber.info/inful/fmforge/internal/version"
	"git.home.luguber.info/inful/fmforge/internal/watch"
)

var CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"fmforge.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `help:"Print version and exit"`

	Build struct {
		Output string `short:"o" help:"Output file path (overrides config)"`
		Format string `short:"f" help:"Output format: json, yaml, xml, markdown (overrides config)"`
	} `cmd:"" help:"Compile documents into structured output"`

	Validate struct{} `cmd:"" help:"Validate documents against the schema without building"`

	Directives struct{} `cmd:"" help:"List supported directive kinds and their dependencies"`

	Watch struct {
		State string `help:"SQLite state file for change tracking (overrides config)"`
	} `cmd:"" help:"Rebuild continuously on file changes"`
}

func main() {
	// Local .env files supply FMFORGE_* overrides in development.
	_ = godotenv.Load()

	kctx := kong.Parse(&CLI, kong.Vars{"version": version.Version})

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	adapter := fferrors.NewCLIErrorAdapter(CLI.Verbose, logger)

	switch kctx.Command() {
	case "build":
		adapter.HandleError(runBuild(logger))
	case "validate":
		adapter.HandleError(runValidate(logger))
	case "directives":
		runDirectives()
	case "watch":
		adapter.HandleError(runWatch(logger))
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}
	if CLI.Build.Output != "" {
		cfg.Output.Path = CLI.Build.Output
	}
	if CLI.Build.Format != "" {
		cfg.Output.Format = CLI.Build.Format
	}
	if CLI.Watch.State != "" {
		cfg.Watch.StatePath = CLI.Watch.State
	}
	return cfg, nil
}

func runBuild(logger *slog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := build.NewBuilder(logger, nil).Run(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d documents, %s)\n", res.OutputPath, len(res.Documents), res.Duration.Round(time.Millisecond))
	return nil
}

func runValidate(logger *slog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rawSchema, tree, err := loader.LoadSchema(cfg.Schema)
	if err != nil {
		return err
	}
	paths, err := loader.Discover(cfg.Docs)
	if err != nil {
		return err
	}
	docs, err := loader.LoadDocuments(paths, tree.Defaults())
	if err != nil {
		return err
	}

	validator, err := validate.New(rawSchema)
	if err != nil {
		return err
	}

	datas := make([]document.Data, len(docs))
	for i, doc := range docs {
		datas[i] = doc.Data
	}
	issues := validator.ValidateAll(paths, datas)
	for _, issue := range issues {
		fmt.Println(issue.String())
	}
	if len(issues) > 0 {
		return fferrors.NewError(fferrors.CategoryValidation,
			fmt.Sprintf("%d validation issue(s) in %d document(s)", len(issues), len(docs))).Build()
	}
	logger.Info("all documents valid", slog.Int("documents", len(docs)))
	return nil
}

func runDirectives() {
	for _, kind := range schema.SupportedKinds() {
		deps := schema.DependenciesOf(kind)
		if len(deps) == 0 {
			fmt.Println(kind)
			continue
		}
		names := make([]string, len(deps))
		for i, dep := range deps {
			names[i] = dep.String()
		}
		fmt.Printf("%s (after %s)\n", kind, strings.Join(names, ", "))
	}
}

func runWatch(logger *slog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store *state.Store
	if cfg.Watch.StatePath != "" {
		store, err = state.NewStore(cfg.Watch.StatePath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	var (
		registry *prom.Registry
		recorder metrics.Recorder
	)
	if cfg.Watch.MetricsAddr != "" {
		registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	builder := build.NewBuilder(logger, recorder)
	if err := watch.New(cfg, builder, store, registry, logger).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
