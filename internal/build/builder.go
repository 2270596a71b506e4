// Package build provides the canonical build execution path for fmforge.
// All execution surfaces (CLI one-shot, watch mode, tests) route through
// Builder.Run.
package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/fmforge/internal/config"
	"git.home.luguber.info/inful/fmforge/internal/document"
	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
	"git.home.luguber.info/inful/fmforge/internal/loader"
	"git.home.luguber.info/inful/fmforge/internal/metrics"
	"git.home.luguber.info/inful/fmforge/internal/pipeline"
	"git.home.luguber.info/inful/fmforge/internal/render"
	"git.home.luguber.info/inful/fmforge/internal/schema"
	"git.home.luguber.info/inful/fmforge/internal/template"
	"git.home.luguber.info/inful/fmforge/internal/validate"
)

// Status represents the outcome of a build execution.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Result contains the outcome of a build execution.
type Result struct {
	// RunID identifies the pipeline run that produced this result.
	RunID string

	Status Status

	// OutputPath is the file the serialized output was written to.
	OutputPath string

	// Documents lists the source paths that went into the build.
	Documents []string

	// Issues holds validation findings (present even on success when
	// validation runs in non-strict mode).
	Issues []validate.Issue

	// Stages records per-directive pipeline execution.
	Stages []pipeline.StageResult

	// Output is the serialized output text.
	Output string

	StartTime time.Time
	Duration  time.Duration
}

// Builder runs the full compile: load, validate, process, render, write.
type Builder struct {
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewBuilder creates a Builder. A nil logger falls back to slog.Default();
// a nil recorder disables metrics.
func NewBuilder(logger *slog.Logger, recorder metrics.Recorder) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Builder{logger: logger, recorder: recorder}
}

// Run executes one complete build from the given configuration.
func (b *Builder) Run(ctx context.Context, cfg *config.Config) (*Result, error) {
	start := time.Now()
	res := &Result{Status: StatusFailed, StartTime: start}

	finish := func(err error) (*Result, error) {
		res.Duration = time.Since(start)
		b.recorder.ObserveBuildDuration(res.Duration)
		switch {
		case err == nil:
			res.Status = StatusSuccess
			b.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
		case errors.Is(err, context.Canceled):
			res.Status = StatusCancelled
			b.recorder.IncBuildOutcome(metrics.OutcomeCanceled)
		default:
			b.recorder.IncBuildOutcome(metrics.OutcomeFailed)
		}
		return res, err
	}

	rawSchema, tree, err := loader.LoadSchema(cfg.Schema)
	if err != nil {
		return finish(err)
	}

	paths, err := loader.Discover(cfg.Docs)
	if err != nil {
		return finish(err)
	}
	docs, err := loader.LoadDocuments(paths, tree.Defaults())
	if err != nil {
		return finish(err)
	}
	res.Documents = paths
	b.recorder.SetDocumentCount(len(docs))

	datas := make([]document.Data, len(docs))
	for i, doc := range docs {
		datas[i] = doc.Data
	}

	if cfg.Validation.Enabled {
		validator, err := validate.New(rawSchema)
		if err != nil {
			return finish(err)
		}
		res.Issues = validator.ValidateAll(paths, datas)
		b.recorder.IncValidationIssues(len(res.Issues))
		for _, issue := range res.Issues {
			b.logger.Warn("validation issue",
				slog.String("document", issue.Document),
				slog.String("location", issue.Location),
				slog.String("message", issue.Message))
		}
		if cfg.Validation.Strict && len(res.Issues) > 0 {
			return finish(fferrors.NewError(fferrors.CategoryValidation,
				fmt.Sprintf("%d validation issue(s) in strict mode", len(res.Issues))).
				WithContext("issues", len(res.Issues)).Build())
		}
	}

	processor := pipeline.NewProcessor(b.logger, pipeline.Options{
		Parallel: cfg.Processing.Parallel,
		Workers:  cfg.Processing.Workers,
	})
	pres, err := processor.Process(ctx, tree, datas)
	if pres != nil {
		res.RunID = pres.RunID
		res.Stages = pres.Stages
		for _, stage := range pres.Stages {
			if !stage.Skipped {
				b.recorder.ObserveStageDuration(stage.Kind.String(), stage.Duration)
			}
		}
	}
	if err != nil {
		return finish(err)
	}

	output, err := b.render(cfg, tree, datas, pres.Final)
	if err != nil {
		return finish(err)
	}
	res.Output = output

	if err := writeOutput(cfg.Output.Path, output); err != nil {
		return finish(err)
	}
	res.OutputPath = cfg.Output.Path

	b.logger.Info("build complete",
		slog.String("run_id", res.RunID),
		slog.Int("documents", len(docs)),
		slog.String("output", res.OutputPath))
	return finish(nil)
}

// render resolves the template directives and serializes the final items.
// With no x-template directive the final items are serialized directly.
func (b *Builder) render(cfg *config.Config, tree *schema.Tree, originals, items []document.Data) (string, error) {
	format, err := render.ParseFormat(cfg.Output.Format)
	if err != nil {
		return "", err
	}
	serializer, err := render.ForFormat(format)
	if err != nil {
		return "", err
	}

	containerDirective, err := tree.DirectiveFor(schema.KindTemplate)
	if err != nil {
		return "", err
	}
	if containerDirective == nil {
		values := make([]any, len(items))
		for i, item := range items {
			values[i] = item.Value()
		}
		out, err := serializer.Serialize(values)
		if err != nil {
			return "", fferrors.WrapError(err, fferrors.CategoryRender, "serialization failed").Build()
		}
		return out, nil
	}

	container, err := loader.LoadTemplate(loader.ResolveTemplatePath(cfg.Schema, containerDirective.SourcePath))
	if err != nil {
		return "", err
	}

	var itemTemplate any
	itemDirective, err := tree.DirectiveFor(schema.KindTemplateItems)
	if err != nil {
		return "", err
	}
	if itemDirective != nil {
		itemTemplate, err = loader.LoadTemplate(loader.ResolveTemplatePath(cfg.Schema, itemDirective.SourcePath))
		if err != nil {
			return "", err
		}
	}

	main, err := mainData(tree, originals, items)
	if err != nil {
		return "", err
	}

	service := render.NewService(template.NewRenderer(template.MissingEmpty), serializer, b.logger)
	return service.RenderOutput(container, itemTemplate, main, items)
}

// mainData builds the container's substitution context: the first source
// document's front matter, overlaid with the aggregate fields that derive and
// merge stages attached to the processed items. Part explosion drops the
// document-level fields, so the originals supply them.
func mainData(tree *schema.Tree, originals, items []document.Data) (document.Data, error) {
	var main document.Data
	if len(originals) > 0 {
		main = originals[0]
	}
	if len(items) == 0 {
		return main, nil
	}

	directives, err := tree.Directives()
	if err != nil {
		return main, err
	}
	for _, d := range directives {
		switch d.Kind {
		case schema.KindDerivedFrom, schema.KindDerivedUnique, schema.KindMergeArrays, schema.KindExtractFrom:
			v, ok := items[0].Get(d.DataPath)
			if !ok {
				continue
			}
			main, err = main.Set(d.DataPath, v)
			if err != nil {
				return main, err
			}
		}
	}
	return main, nil
}

func writeOutput(path, output string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fferrors.WrapError(err, fferrors.CategoryFileSystem, "create output directory").Build()
		}
	}
	if err := os.WriteFile(path, []byte(output), 0o644); err != nil {
		return fferrors.WrapError(err, fferrors.CategoryFileSystem, "write output").WithContext("path", path).Build()
	}
	return nil
}
