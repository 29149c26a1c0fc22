package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/webtree/internal/build"
	"git.home.luguber.info/inful/webtree/internal/config"
	ferrors "git.home.luguber.info/inful/webtree/internal/foundation/errors"
	"git.home.luguber.info/inful/webtree/internal/linkcheck"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Force  bool   `short:"f" help:"Render every node, ignoring the previous build"`
	Output string `short:"o" help:"Override the output directory" type:"path"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(g, root)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output = b.Output
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return RunBuild(ctx, os.Stdout, cfg, g, b.Force)
}

// RunBuild runs one build and prints a summary to w.
func RunBuild(ctx context.Context, w io.Writer, cfg *config.Config, g *Global, force bool) error {
	checker := linkcheck.New()
	builder, err := build.New(cfg,
		build.WithLogger(g.Logger),
		build.WithPlugins(checker),
		build.WithForce(force))
	if err != nil {
		return err
	}
	defer func() { _ = builder.Close() }()

	res, err := builder.Run(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Build %s: %s (%d written, %d unchanged, %d failed) in %s\n",
		res.BuildID, res.Status, res.Written, res.Skipped, res.Failed, res.Duration.Round(time.Millisecond))
	for _, bl := range checker.Broken() {
		_, _ = fmt.Fprintf(w, "  broken link in %s: %s\n", bl.Node, bl.Link.URL)
	}
	if res.Status == build.StatusFailed {
		return ferrors.BuildError("build failed").WithContext("build_id", res.BuildID).Build()
	}
	return nil
}
