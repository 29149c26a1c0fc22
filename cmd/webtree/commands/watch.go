package commands

import (
	"context"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/webtree/internal/build"
	"git.home.luguber.info/inful/webtree/internal/daemon"
	"git.home.luguber.info/inful/webtree/internal/linkcheck"
	"git.home.luguber.info/inful/webtree/internal/metrics"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Metrics string `help:"Override metrics.address; empty uses the configuration"`
}

func (c *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(g, root)
	if err != nil {
		return err
	}
	if c.Metrics != "" {
		cfg.Metrics.Address = c.Metrics
	}

	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(reg)
	builder, err := build.New(cfg,
		build.WithLogger(g.Logger),
		build.WithRecorder(recorder),
		build.WithPlugins(linkcheck.New()))
	if err != nil {
		return err
	}
	defer func() { _ = builder.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d := daemon.New(builder, daemon.Options{
		Source:         cfg.Source,
		Excludes:       []string{cfg.Output, cfg.StateFile},
		PollInterval:   cfg.PollInterval(),
		MetricsAddress: cfg.Metrics.Address,
		MetricsHandler: recorder.Handler(),
		Logger:         g.Logger,
	})
	return d.Run(ctx)
}
