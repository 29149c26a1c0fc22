package errors

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrorCategory classifies an error for exit codes and log routing.
type ErrorCategory string

const (
	// CategoryConfig: configuration file and flag errors.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"

	// CategoryPath: path parsing and node lookup.
	CategoryPath ErrorCategory = "path"
	CategoryTree ErrorCategory = "tree"

	// CategoryRender: block rendering and content processors.
	CategoryRender     ErrorCategory = "render"
	CategoryBuild      ErrorCategory = "build"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryState      ErrorCategory = "state"

	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // stops the command
	SeverityError   ErrorSeverity = "error"   // fails the current node or operation
	SeverityWarning ErrorSeverity = "warning" // degraded output
)

// ErrorContext holds structured fields attached to an error.
type ErrorContext map[string]any

// Merge returns a new context with the values of c and other, other winning.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	out := make(ErrorContext, len(c)+len(other))
	maps.Copy(out, c)
	maps.Copy(out, other)
	return out
}

// String formats the fields as "k=v" pairs sorted by key.
func (c ErrorContext) String() string {
	if len(c) == 0 {
		return ""
	}
	parts := make([]string, 0, len(c))
	for _, k := range slices.Sorted(maps.Keys(c)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, c[k]))
	}
	return strings.Join(parts, " ")
}
