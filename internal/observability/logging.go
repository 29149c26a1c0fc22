// Package observability carries build-scoped logging context through
// context.Context.
package observability

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/webtree/internal/logfields"
)

// Scope identifies the build and build stage a piece of work belongs to.
type Scope struct {
	BuildID string
	Stage   string
}

// attrs returns the non-empty fields of s as log attributes.
func (s Scope) attrs() []any {
	out := make([]any, 0, 2)
	if s.BuildID != "" {
		out = append(out, logfields.BuildID(s.BuildID))
	}
	if s.Stage != "" {
		out = append(out, slog.String("stage", s.Stage))
	}
	return out
}

type scopeKey struct{}

// ScopeFrom returns the scope stored in ctx, or the zero Scope.
func ScopeFrom(ctx context.Context) Scope {
	s, _ := ctx.Value(scopeKey{}).(Scope)
	return s
}

func withScope(ctx context.Context, edit func(*Scope)) context.Context {
	s := ScopeFrom(ctx)
	edit(&s)
	return context.WithValue(ctx, scopeKey{}, s)
}

// WithBuildID returns ctx scoped to build id.
func WithBuildID(ctx context.Context, id string) context.Context {
	return withScope(ctx, func(s *Scope) { s.BuildID = id })
}

// WithStage returns ctx scoped to stage ("load", "write"), keeping the build ID.
func WithStage(ctx context.Context, stage string) context.Context {
	return withScope(ctx, func(s *Scope) { s.Stage = stage })
}

// Logger returns base annotated with the scope of ctx. A nil base uses
// slog.Default.
func Logger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	if a := ScopeFrom(ctx).attrs(); len(a) > 0 {
		return base.With(a...)
	}
	return base
}
