// Package daemon keeps an output tree up to date: it rebuilds on source
// changes and on a poll interval, and serves Prometheus metrics meanwhile.
package daemon

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/webtree/internal/build"
	ferrors "git.home.luguber.info/inful/webtree/internal/foundation/errors"
	"git.home.luguber.info/inful/webtree/internal/logfields"
)

// Runner runs one build.
type Runner interface {
	Run(ctx context.Context) (*build.Result, error)
}

// Options configures a Daemon.
type Options struct {
	Source       string
	Excludes     []string
	PollInterval time.Duration
	QuietWindow  time.Duration
	// MetricsAddress enables the metrics endpoint when not empty.
	MetricsAddress string
	// MetricsHandler serves /metrics; nil uses the default registry.
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// Daemon rebuilds the site until its context is canceled.
type Daemon struct {
	runner Runner
	opts   Options
	logger *slog.Logger

	mu   sync.RWMutex
	last *build.Result
	runs int
}

// New returns a daemon driving runner.
func New(runner Runner, opts Options) *Daemon {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{runner: runner, opts: opts, logger: logger}
}

// LastResult returns the result of the most recent build, or nil.
func (d *Daemon) LastResult() *build.Result {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.last
}

// Runs returns the number of builds started so far.
func (d *Daemon) Runs() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.runs
}

// Run performs an initial build, then rebuilds on changes until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	rebuilder := NewRebuilder(d.rebuild, d.opts.QuietWindow)

	var srv *http.Server
	if d.opts.MetricsAddress != "" {
		var err error
		if srv, err = d.serveMetrics(); err != nil {
			return err
		}
	}

	watcher, err := NewSourceWatcher(d.opts.Source, d.opts.Excludes, d.logger)
	if err != nil {
		d.shutdownServer(srv)
		return err
	}
	defer func() { _ = watcher.Close() }()

	sched, err := NewScheduler(d.logger)
	if err != nil {
		d.shutdownServer(srv)
		return err
	}
	if d.opts.PollInterval > 0 {
		if _, err := sched.ScheduleEvery("poll-rebuild", d.opts.PollInterval, rebuilder.Request); err != nil {
			_ = sched.Stop(ctx)
			d.shutdownServer(srv)
			return err
		}
	}
	sched.Start()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		rebuilder.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		_ = watcher.Run(ctx, rebuilder.Trigger)
	}()

	rebuilder.Request()
	d.logger.Info("Watching source", slog.String("source", d.opts.Source),
		slog.Duration("poll_interval", d.opts.PollInterval))

	<-ctx.Done()
	d.logger.Info("Stopping watch")
	if err := sched.Stop(context.WithoutCancel(ctx)); err != nil {
		d.logger.Warn("Scheduler shutdown failed", logfields.Error(err))
	}
	d.shutdownServer(srv)
	wg.Wait()
	return nil
}

func (d *Daemon) rebuild(ctx context.Context) {
	d.mu.Lock()
	d.runs++
	d.mu.Unlock()

	res, err := d.runner.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		d.logger.Warn("Rebuild failed", logfields.Error(err))
	}
	if res != nil {
		d.mu.Lock()
		d.last = res
		d.mu.Unlock()
	}
}

// Handler serves /metrics and /healthz.
func (d *Daemon) Handler() http.Handler {
	mh := d.opts.MetricsHandler
	if mh == nil {
		mh = promhttp.Handler()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", mh)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		last := d.LastResult()
		if last != nil && last.Status == build.StatusFailed {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(string(last.Status) + "\n"))
			return
		}
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

func (d *Daemon) serveMetrics() (*http.Server, error) {
	ln, err := net.Listen("tcp", d.opts.MetricsAddress)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "failed to listen for metrics").
			WithContext("address", d.opts.MetricsAddress).
			Build()
	}
	srv := &http.Server{Handler: d.Handler(), ReadHeaderTimeout: 10 * time.Second, IdleTimeout: 60 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("Metrics server error", logfields.Error(err))
		}
	}()
	d.logger.Info("Serving metrics", slog.String("address", ln.Addr().String()))
	return srv, nil
}

func (d *Daemon) shutdownServer(srv *http.Server) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		d.logger.Warn("Metrics server shutdown failed", logfields.Error(err))
	}
}
