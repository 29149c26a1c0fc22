// Package build runs a site build: it loads the output tree from the source
// directory, renders every stale node with a pool of workers and writes the
// results to the output directory.
package build

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/webtree/internal/config"
	"git.home.luguber.info/inful/webtree/internal/events"
	ferrors "git.home.luguber.info/inful/webtree/internal/foundation/errors"
	"git.home.luguber.info/inful/webtree/internal/logfields"
	"git.home.luguber.info/inful/webtree/internal/metrics"
	"git.home.luguber.info/inful/webtree/internal/observability"
	"git.home.luguber.info/inful/webtree/internal/plugin"
	"git.home.luguber.info/inful/webtree/internal/state"
	"git.home.luguber.info/inful/webtree/internal/tree"
)

// Status is the outcome of a build.
type Status string

const (
	// StatusSuccess: every stale node was written.
	StatusSuccess Status = "success"
	// StatusWarning: some nodes failed to render; the rest were written.
	StatusWarning Status = "warning"
	// StatusFailed: the build could not run.
	StatusFailed Status = "failed"
	// StatusCanceled: the context was canceled.
	StatusCanceled Status = "canceled"
)

// Result summarizes a build.
type Result struct {
	BuildID  string
	Status   Status
	Nodes    int
	Written  int
	Skipped  int
	Failed   int
	Duration time.Duration
}

// Option configures a Builder.
type Option func(*Builder)

// WithSource replaces the source file system, os.DirFS(cfg.Source) by default.
func WithSource(fsys fs.FS) Option { return func(b *Builder) { b.fsys = fsys } }

// WithStore replaces the state store. The caller keeps ownership.
func WithStore(s state.Store) Option { return func(b *Builder) { b.store = s } }

func WithLogger(l *slog.Logger) Option       { return func(b *Builder) { b.logger = l } }
func WithRecorder(r metrics.Recorder) Option { return func(b *Builder) { b.recorder = r } }

// WithPlugins registers additional plugins, e.g. listeners.
func WithPlugins(p ...plugin.Plugin) Option {
	return func(b *Builder) { b.plugins = append(b.plugins, p...) }
}

// WithForce ignores the fingerprints of the previous build.
func WithForce(force bool) Option { return func(b *Builder) { b.force = force } }

// WithExclude skips source entries, given relative to the source root.
func WithExclude(paths ...string) Option {
	return func(b *Builder) { b.excludes = append(b.excludes, paths...) }
}

// Builder runs builds of one site. Run must not be called concurrently.
type Builder struct {
	cfg      *config.Config
	fsys     fs.FS
	store    state.Store
	ownStore bool
	logger   *slog.Logger
	recorder metrics.Recorder
	plugins  []plugin.Plugin
	force    bool
	excludes []string
}

// New returns a builder for cfg. Without WithStore the SQLite state file of
// cfg is opened; Close releases it.
func New(cfg *config.Config, opts ...Option) (*Builder, error) {
	b := &Builder{cfg: cfg, logger: slog.Default(), recorder: metrics.NoopRecorder{}}
	for _, o := range opts {
		o(b)
	}
	if b.fsys == nil {
		b.fsys = os.DirFS(cfg.Source)
		if rel, ok := within(cfg.Source, cfg.Output); ok {
			b.excludes = append(b.excludes, rel)
		}
	}
	if b.store == nil {
		if err := os.MkdirAll(filepath.Dir(cfg.StateFile), 0o750); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create state directory").
				WithContext("state_file", cfg.StateFile).
				Build()
		}
		s, err := state.NewSQLiteStore(cfg.StateFile)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryState, "failed to open state store").
				WithContext("state_file", cfg.StateFile).
				Build()
		}
		b.store = s
		b.ownStore = true
	}
	return b, nil
}

// Close releases the state store if the builder opened it.
func (b *Builder) Close() error {
	if b.ownStore {
		return b.store.Close()
	}
	return nil
}

// Run executes one build.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	buildID := uuid.NewString()
	ctx = observability.WithBuildID(ctx, buildID)
	logger := observability.Logger(ctx, b.logger)
	writeCtx := observability.WithStage(ctx, "write")
	writeLogger := observability.Logger(writeCtx, b.logger)
	res := &Result{BuildID: buildID}

	fail := func(err error) (*Result, error) {
		res.Status = StatusFailed
		res.Duration = time.Since(start)
		b.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		b.recorder.ObserveBuildDuration(res.Duration)
		return res, err
	}

	site, err := b.Load(ctx, buildID)
	if err != nil {
		observability.Logger(observability.WithStage(ctx, "load"), b.logger).
			Error("Failed to load source tree", logfields.Error(err))
		return fail(err)
	}

	// Plugins do their work while nodes are written.
	pctx := plugin.NewPluginContext(writeCtx, writeLogger, b.cfg.Output, buildID)
	for name, c := range b.cfg.Plugins {
		pctx.Config[name] = c
	}
	if err := site.Registry.InitAll(pctx); err != nil {
		return fail(err)
	}
	defer func() {
		if err := site.Registry.CleanupAll(); err != nil {
			writeLogger.Warn("Plugin cleanup failed", logfields.Error(err))
		}
	}()
	site.subscribeListeners()

	nodes := site.writable()
	res.Nodes = len(nodes)
	site.Bus.Dispatch(ctx, events.BuildStarted{BuildID: buildID, Nodes: len(nodes)})
	logger.Info("Build started",
		slog.Int("nodes", len(nodes)),
		slog.Int("plugins", site.Registry.Count()),
		slog.Bool("force", b.force))

	b.writeAll(writeCtx, site, nodes, res)

	if ctx.Err() == nil {
		// Nodes without output, such as templates, are recorded once every
		// dependent was processed. Failed dependents were forgotten and stay
		// stale on their own.
		_ = site.Tree.Walk(func(n *tree.Node) error {
			if _, ok := n.Info.Handler.(tree.Writer); !ok {
				site.Tracker.Commit(n)
			}
			return nil
		})
	}
	if err := site.Tracker.Flush(context.WithoutCancel(ctx)); err != nil {
		writeLogger.Error("Failed to record fingerprints", logfields.Error(err))
		return fail(err)
	}

	res.Duration = time.Since(start)
	outcome := metrics.BuildOutcomeSuccess
	switch {
	case ctx.Err() != nil:
		res.Status = StatusCanceled
		outcome = metrics.BuildOutcomeCanceled
	case res.Failed > 0:
		res.Status = StatusWarning
		outcome = metrics.BuildOutcomeWarning
	default:
		res.Status = StatusSuccess
	}
	b.recorder.IncBuildOutcome(outcome)
	b.recorder.ObserveBuildDuration(res.Duration)

	site.Bus.Dispatch(context.WithoutCancel(ctx), events.BuildCompleted{
		BuildID:  buildID,
		Rendered: res.Written,
		Skipped:  res.Skipped,
		Failed:   res.Failed,
		Duration: res.Duration,
	})
	logger.Info("Build completed",
		slog.String("status", string(res.Status)),
		slog.Int("written", res.Written),
		slog.Int("skipped", res.Skipped),
		slog.Int("failed", res.Failed),
		logfields.DurationMS(float64(res.Duration.Microseconds())/1000))

	if res.Status == StatusCanceled {
		return res, ctx.Err()
	}
	return res, nil
}

// writeAll processes nodes with cfg.Workers workers.
func (b *Builder) writeAll(ctx context.Context, site *Site, nodes []*tree.Node, res *Result) {
	workers := b.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	b.recorder.SetWorkers(workers)
	defer b.recorder.SetWorkers(0)

	var written, skipped, failed atomic.Int64
	jobs := make(chan *tree.Node)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				switch b.processNode(ctx, site, n) {
				case metrics.NodeWritten:
					written.Add(1)
				case metrics.NodeSkipped:
					skipped.Add(1)
				default:
					failed.Add(1)
				}
			}
		}()
	}

feed:
	for _, n := range nodes {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- n:
		}
	}
	close(jobs)
	wg.Wait()

	res.Written = int(written.Load())
	res.Skipped = int(skipped.Load())
	res.Failed = int(failed.Load())
}

func (b *Builder) processNode(ctx context.Context, site *Site, n *tree.Node) (result metrics.NodeResultLabel) {
	defer func() { b.recorder.IncNodeResult(result) }()
	if ctx.Err() != nil {
		return metrics.NodeSkipped
	}
	logger := observability.Logger(ctx, b.logger)
	target := b.TargetPath(n)

	if !b.force {
		changed, err := n.Changed()
		if err == nil && !changed && exists(target) {
			site.Tracker.Commit(n)
			logger.Debug("Node unchanged", logfields.NodePath(n.FullPath()))
			return metrics.NodeSkipped
		}
	}

	out, err := n.WriteInfo(ctx)
	if err == nil {
		var size int64
		size, err = b.writeOutput(target, out)
		if err == nil {
			site.Tracker.Commit(n)
			site.Bus.Dispatch(ctx, events.NodeWritten{BuildID: site.BuildID, Node: n, Target: target, Bytes: size})
			logger.Debug("Node written", logfields.NodePath(n.FullPath()), slog.String("target", target))
			return metrics.NodeWritten
		}
	}
	site.Tracker.Forget(n)
	if !errors.Is(err, context.Canceled) {
		logger.Warn("Failed to write node",
			logfields.NodePath(n.FullPath()),
			logfields.Source(n.Info.Source),
			logfields.Error(err))
	}
	return metrics.NodeFailed
}
