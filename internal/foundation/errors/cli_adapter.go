package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Exit codes of the webtree command.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitNotFound = 3
	ExitTree     = 4
	ExitConfig   = 7
	ExitInternal = 10
	ExitBuild    = 11
	ExitRuntime  = 12
)

// CLIErrorAdapter turns errors into messages and exit codes.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter returns an adapter printing to os.Stderr.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, stderr: os.Stderr, exit: os.Exit}
}

// ExitCodeFor maps err to an exit code.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	classified, ok := AsClassified(err)
	if !ok {
		return ExitFailure
	}
	switch classified.Category() {
	case CategoryValidation:
		return ExitUsage
	case CategoryNotFound:
		return ExitNotFound
	case CategoryPath, CategoryTree:
		return ExitTree
	case CategoryConfig:
		return ExitConfig
	case CategoryRender, CategoryBuild, CategoryFileSystem:
		return ExitBuild
	case CategoryState, CategoryRuntime:
		return ExitRuntime
	case CategoryInternal:
		return ExitInternal
	default:
		return ExitFailure
	}
}

// FormatError returns the message shown to the user. Internal errors are
// only detailed in verbose mode.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	classified, ok := AsClassified(err)
	if ok && classified.Category() == CategoryInternal && !a.verbose {
		return "Internal error occurred (use -v for details)"
	}
	return fmt.Sprintf("Error: %v", err)
}

// HandleError prints err and exits with its code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	if a.verbose {
		a.logError(err)
	}
	_, _ = fmt.Fprintln(a.stderr, a.FormatError(err))
	a.exit(a.ExitCodeFor(err))
}

func (a *CLIErrorAdapter) logError(err error) {
	classified, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", slog.String("error", err.Error()))
		return
	}
	attrs := []slog.Attr{
		slog.String("category", string(classified.Category())),
		slog.String("severity", string(classified.Severity())),
	}
	for k, v := range classified.Context() {
		attrs = append(attrs, slog.Any(k, v))
	}
	level := slog.LevelError
	if classified.Severity() == SeverityWarning {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(context.Background(), level, classified.Message(), attrs...)
}
