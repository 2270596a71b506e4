package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
	"git.home.luguber.info/inful/fmforge/internal/document"
	"git.home.luguber.info/inful/fmforge/internal/schema"
)

// executorFn transforms the item array for one directive. Executors are pure:
// they never mutate their input and report every failure as an error value.
type executorFn func(ctx context.Context, items []document.Data, d schema.Directive, opts Options) ([]document.Data, error)

var executors = map[schema.Kind]executorFn{
	schema.KindFrontmatterPart: execFrontmatterPart,
	schema.KindExtractFrom:     execExtractFrom,
	schema.KindJmespathFilter:  execJmespathFilter,
	schema.KindMergeArrays:     execMergeArrays,
	schema.KindDerivedFrom:     execDerivedFrom,
	schema.KindDerivedUnique:   execDerivedUnique,
	schema.KindFlattenArrays:   execFlattenArrays,
	// KindTemplate and KindTemplateItems are resolved paths consumed by the
	// rendering layer; the processor records them but runs no transform.
}

// Processor runs detected directives over a document set in dependency order.
type Processor struct {
	logger *slog.Logger
	opts   Options
}

// NewProcessor creates a Processor with the given logger and options.
// A nil logger falls back to slog.Default().
func NewProcessor(logger *slog.Logger, opts Options) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, opts: opts}
}

// Process scans the schema for directives, computes the processing order, and
// executes every stage in sequence, feeding each stage's output into the next.
//
// An empty detected set or empty document array short-circuits to a
// successful, unchanged result. A stage failure aborts the remaining pipeline
// and surfaces the failing directive's identity; there is no best-effort
// continuation past a failed stage.
func (p *Processor) Process(ctx context.Context, tree *schema.Tree, docs []document.Data) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID: uuid.NewString(),
		Final: docs,
	}

	directives, err := tree.Directives()
	if err != nil {
		return nil, err
	}
	detected := make([]schema.Kind, 0, len(directives))
	byKind := make(map[schema.Kind]schema.Directive, len(directives))
	for _, k := range schema.AllKinds() {
		for _, d := range directives {
			if d.Kind == k {
				detected = append(detected, k)
				byKind[k] = d
				break
			}
		}
	}

	if len(detected) == 0 || len(docs) == 0 {
		result.Elapsed = time.Since(start)
		p.logger.Info("pipeline complete",
			slog.String("run_id", result.RunID),
			slog.Int("documents", len(docs)),
			slog.Int("directives", len(detected)),
			slog.Duration("elapsed", result.Elapsed))
		return result, nil
	}

	order, err := schema.ComputeOrder(detected)
	if err != nil {
		return nil, err
	}
	result.Order = order

	p.logger.Info("pipeline start",
		slog.String("run_id", result.RunID),
		slog.Int("documents", len(docs)),
		slog.Int("directives", len(order.Sequence)),
		slog.Int("stages", len(order.Stages)))

	items := docs
	for stageIdx, stage := range order.Stages {
		for _, kind := range stage {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			directive := byKind[kind]
			exec, runnable := executors[kind]

			stageStart := time.Now()
			if !runnable {
				result.Stages = append(result.Stages, StageResult{
					Kind:     kind,
					Stage:    stageIdx,
					ItemsIn:  len(items),
					ItemsOut: len(items),
					Skipped:  true,
				})
				result.Processed = append(result.Processed, kind)
				continue
			}

			next, err := exec(ctx, items, directive, p.opts)
			duration := time.Since(stageStart)
			if err != nil {
				p.logger.Error("stage failed",
					slog.String("run_id", result.RunID),
					slog.String("directive", kind.String()),
					slog.Int("stage", stageIdx),
					slog.String("error", err.Error()))
				return nil, fferrors.WrapError(err, fferrors.CategoryProcessingStage, "directive stage failed").
					WithContext("stage", kind.String()).
					WithContext("stage_index", stageIdx).
					Build()
			}

			result.Stages = append(result.Stages, StageResult{
				Kind:     kind,
				Stage:    stageIdx,
				ItemsIn:  len(items),
				ItemsOut: len(next),
				Duration: duration,
			})
			result.Processed = append(result.Processed, kind)

			p.logger.Debug("stage complete",
				slog.String("run_id", result.RunID),
				slog.String("directive", kind.String()),
				slog.Int("items_in", len(items)),
				slog.Int("items_out", len(next)),
				slog.Duration("duration", duration))

			items = next
		}
	}

	result.Final = items
	result.Elapsed = time.Since(start)

	p.logger.Info("pipeline complete",
		slog.String("run_id", result.RunID),
		slog.Int("items", len(items)),
		slog.Int("directives", len(result.Processed)),
		slog.Duration("elapsed", result.Elapsed))

	return result, nil
}
