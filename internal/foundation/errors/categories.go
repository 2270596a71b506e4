package errors

import "maps"

// ErrorCategory represents the broad category of an error for classification and routing.
type ErrorCategory string

const (
	// CategoryConfig represents user-facing configuration and input errors.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryFileSystem ErrorCategory = "filesystem"

	// CategorySchema represents directive and schema structure errors.
	CategorySchema           ErrorCategory = "schema"
	CategoryCyclicDependency ErrorCategory = "cyclic_dependency"
	CategoryPropertyNotFound ErrorCategory = "property_not_found"
	CategoryInvalidFormat    ErrorCategory = "invalid_format"

	// CategoryProcessingStage represents failures inside a named pipeline stage.
	CategoryProcessingStage ErrorCategory = "processing_stage"
	CategoryAggregation     ErrorCategory = "aggregation"

	// CategoryTemplateStructure represents template analysis and rendering errors.
	CategoryTemplateStructure ErrorCategory = "template_structure"
	CategoryTemplateMapping   ErrorCategory = "template_mapping"
	CategoryRender            ErrorCategory = "render"

	// CategoryState and CategoryInternal represent runtime and infrastructure errors.
	CategoryState    ErrorCategory = "state"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution completely
	SeverityError   ErrorSeverity = "error"   // Fails the current operation
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// ErrorContext provides structured context for errors.
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c[key]
	return v, ok
}

// Merge combines another context into this one, returning the merged context.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	if len(other) == 0 {
		return c
	}
	merged := make(ErrorContext, len(c)+len(other))
	maps.Copy(merged, c)
	maps.Copy(merged, other)
	return merged
}
