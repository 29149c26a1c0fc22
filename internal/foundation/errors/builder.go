package errors

// ErrorBuilder builds ClassifiedError values.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts an error of category with severity SeverityError.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: SeverityError,
		message:  message,
		context:  ErrorContext{},
	}}
}

// WrapError starts an error of category caused by err.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.err.severity = severity
	return b
}

func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.err.cause = err
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context[key] = value
	return b
}

// Fatal marks the error as stopping the command.
func (b *ErrorBuilder) Fatal() *ErrorBuilder { return b.WithSeverity(SeverityFatal) }

// Warning marks the error as degrading output only.
func (b *ErrorBuilder) Warning() *ErrorBuilder { return b.WithSeverity(SeverityWarning) }

// Build returns the error. The builder must not be reused.
func (b *ErrorBuilder) Build() *ClassifiedError {
	e := b.err
	return &e
}

// ConfigError creates a configuration error.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

// ValidationError creates a validation error.
func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal()
}

// PathError creates a path or lookup error.
func PathError(message string) *ErrorBuilder {
	return NewError(CategoryPath, message)
}

// TreeError creates a tree structure error. Structural violations are fatal.
func TreeError(message string) *ErrorBuilder {
	return NewError(CategoryTree, message).Fatal()
}

// RenderError creates a render error for a single node.
func RenderError(message string) *ErrorBuilder {
	return NewError(CategoryRender, message)
}

// BuildError creates a build error.
func BuildError(message string) *ErrorBuilder {
	return NewError(CategoryBuild, message).Fatal()
}

func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message)
}

func StateError(message string) *ErrorBuilder {
	return NewError(CategoryState, message)
}

func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}
