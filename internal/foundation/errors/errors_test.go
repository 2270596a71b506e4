package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedErrorFormat(t *testing.T) {
	err := NewError(CategoryProcessingStage, "stage failed").Build()
	assert.Equal(t, "[processing_stage:error] stage failed", err.Error())

	cause := fmt.Errorf("boom")
	wrapped := WrapError(cause, CategoryAggregation, "merge failed").Build()
	assert.Equal(t, "[aggregation:error] merge failed: boom", wrapped.Error())
	assert.Equal(t, cause, errors.Unwrap(wrapped))
}

func TestBuilderContext(t *testing.T) {
	err := StageError("derived-from", "projection failed").
		WithContext("source", "commands[].c1").
		Build()

	require.True(t, err.IsCategory(CategoryProcessingStage))

	stage, ok := err.Context().Get("stage")
	require.True(t, ok)
	assert.Equal(t, "derived-from", stage)

	source, ok := err.Context().Get("source")
	require.True(t, ok)
	assert.Equal(t, "commands[].c1", source)
}

func TestWithContextReturnsNewError(t *testing.T) {
	base := NewError(CategoryRender, "render failed").Build()
	extended := base.WithContext("format", "json")

	_, ok := base.Context().Get("format")
	assert.False(t, ok, "original error must not gain context")

	format, ok := extended.Context().Get("format")
	require.True(t, ok)
	assert.Equal(t, "json", format)
}

func TestCategoryHelpers(t *testing.T) {
	classified := CyclicDependencyError("cycle detected").Build()
	assert.True(t, HasCategory(classified, CategoryCyclicDependency))
	assert.True(t, classified.IsFatal())
	assert.Equal(t, CategoryCyclicDependency, GetCategory(classified))

	plain := fmt.Errorf("plain")
	assert.False(t, HasCategory(plain, CategoryCyclicDependency))
	assert.Equal(t, CategoryInternal, GetCategory(plain))
	assert.Equal(t, SeverityError, GetSeverity(plain))
}

func TestExitCodes(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)

	assert.Equal(t, 0, adapter.ExitCodeFor(nil))
	assert.Equal(t, 1, adapter.ExitCodeFor(fmt.Errorf("plain")))
	assert.Equal(t, 3, adapter.ExitCodeFor(CyclicDependencyError("cycle").Build()))
	assert.Equal(t, 11, adapter.ExitCodeFor(StageError("merge-arrays", "failed").Build()))
	assert.Equal(t, 4, adapter.ExitCodeFor(TemplateStructureError("duplicate key").Build()))
	assert.Equal(t, 7, adapter.ExitCodeFor(ConfigError("bad config").Build()))
}
