package pipeline

import (
	"time"

	"git.home.luguber.info/inful/fmforge/internal/document"
	"git.home.luguber.info/inful/fmforge/internal/schema"
)

// StageResult records the outcome of one executed directive.
type StageResult struct {
	Kind     schema.Kind
	Stage    int // index into the processing order's stage partition
	ItemsIn  int
	ItemsOut int
	Duration time.Duration
	Skipped  bool // template directives are resolved by the renderer, not executed
}

// Result aggregates the outcome of a full pipeline run.
type Result struct {
	RunID     string
	Final     []document.Data
	Stages    []StageResult
	Processed []schema.Kind
	Order     schema.ProcessingOrder
	Elapsed   time.Duration
}
