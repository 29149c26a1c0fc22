package errors

import (
	stderrors "errors"
	"strings"
)

// ClassifiedError is an error with a category, a severity and structured
// context. Errors built from the same category and message match each other
// under errors.Is regardless of context.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
}

// Error formats "category: message [k=v ...]: cause".
func (e *ClassifiedError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.category))
	b.WriteString(": ")
	b.WriteString(e.message)
	if s := e.context.String(); s != "" {
		b.WriteString(" [")
		b.WriteString(s)
		b.WriteString("]")
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory { return e.category }
func (e *ClassifiedError) Severity() ErrorSeverity { return e.severity }
func (e *ClassifiedError) Message() string         { return e.message }
func (e *ClassifiedError) Context() ErrorContext   { return e.context }

// WithContext returns a copy of e with key set.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	c := *e
	c.context = e.context.Merge(ErrorContext{key: value})
	return &c
}

// Is matches another ClassifiedError with the same category and message.
func (e *ClassifiedError) Is(target error) bool {
	if other, ok := target.(*ClassifiedError); ok {
		return e.category == other.category && e.message == other.message
	}
	return false
}

// IsFatal reports whether the error should stop the command.
func (e *ClassifiedError) IsFatal() bool { return e.severity == SeverityFatal }

// AsClassified returns the first ClassifiedError in the chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasCategory reports whether the first classified error in the chain
// belongs to category.
func HasCategory(err error, category ErrorCategory) bool {
	if classified, ok := AsClassified(err); ok {
		return classified.category == category
	}
	return false
}

// CategoryOf returns the category of err, CategoryInternal for unclassified
// errors.
func CategoryOf(err error) ErrorCategory {
	if classified, ok := AsClassified(err); ok {
		return classified.category
	}
	return CategoryInternal
}
