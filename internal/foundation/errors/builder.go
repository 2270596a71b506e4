package errors

// ErrorBuilder provides a fluent API for creating ClassifiedError instances.
// This makes error creation consistent and discoverable throughout the codebase.
type ErrorBuilder struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
}

// NewError creates a new ErrorBuilder with the specified category and message.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError, // Default severity
		message:  message,
		context:  make(ErrorContext),
	}
}

// WrapError creates a new ErrorBuilder that wraps an existing error.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		message:  message,
		cause:    err,
		context:  make(ErrorContext),
	}
}

// WithSeverity sets the error severity.
func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.severity = severity
	return b
}

// WithContext adds a context key-value pair.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.context = b.context.Set(key, value)
	return b
}

// WithContextMap adds multiple context values.
func (b *ErrorBuilder) WithContextMap(ctx ErrorContext) *ErrorBuilder {
	b.context = b.context.Merge(ctx)
	return b
}

// WithCause sets the underlying error.
func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.cause = err
	return b
}

// Fatal sets the severity to fatal.
func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	return b.WithSeverity(SeverityFatal)
}

// Warning sets the severity to warning.
func (b *ErrorBuilder) Warning() *ErrorBuilder {
	return b.WithSeverity(SeverityWarning)
}

// Build creates the final ClassifiedError.
func (b *ErrorBuilder) Build() *ClassifiedError {
	return &ClassifiedError{
		category: b.category,
		severity: b.severity,
		message:  b.message,
		cause:    b.cause,
		context:  b.context,
	}
}

// Convenience constructors for common error patterns

// ConfigError creates a configuration error.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

// CyclicDependencyError creates an error for an unorderable directive set.
func CyclicDependencyError(message string) *ErrorBuilder {
	return NewError(CategoryCyclicDependency, message).Fatal()
}

// PropertyNotFoundError creates an error for a missing required structural path.
func PropertyNotFoundError(message string) *ErrorBuilder {
	return NewError(CategoryPropertyNotFound, message)
}

// InvalidFormatError creates an error for input that is not the expected shape.
func InvalidFormatError(message string) *ErrorBuilder {
	return NewError(CategoryInvalidFormat, message)
}

// StageError creates an error for a failed processing stage.
func StageError(stage string, message string) *ErrorBuilder {
	return NewError(CategoryProcessingStage, message).WithContext("stage", stage)
}

// AggregationError creates an error for a failed derive/merge/flatten step.
func AggregationError(message string) *ErrorBuilder {
	return NewError(CategoryAggregation, message)
}

// TemplateStructureError creates an error for invalid template structure.
func TemplateStructureError(message string) *ErrorBuilder {
	return NewError(CategoryTemplateStructure, message).Fatal()
}

// RenderError creates an error for failed rendering or serialization.
func RenderError(message string) *ErrorBuilder {
	return NewError(CategoryRender, message)
}

// StateError creates a build-state store error.
func StateError(message string) *ErrorBuilder {
	return NewError(CategoryState, message)
}

// InternalError creates an internal error.
func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}
