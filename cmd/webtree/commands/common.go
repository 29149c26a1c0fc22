package commands

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/webtree/internal/config"
)

// Global holds state shared by subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"webtree.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Render stale nodes of the source tree into the output directory"`
	Tree    TreeCmd    `cmd:"" help:"Print the output tree without rendering"`
	Resolve ResolveCmd `cmd:"" help:"Resolve a path relative to a node and print its route"`
	Watch   WatchCmd   `cmd:"" help:"Rebuild on source changes and serve metrics"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply installs a debug or info text logger until the configuration
// has been read.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// LoadConfig reads the configuration file. A missing file falls back to the
// defaults, relative to the working directory. The process logger is
// reconfigured from the logging section.
func LoadConfig(g *Global, root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if errors.Is(err, config.ErrConfigNotFound) {
		g.Logger.Debug("No configuration file, using defaults", slog.String("path", root.Config))
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	g.Logger = NewLogger(os.Stderr, cfg, root.Verbose)
	slog.SetDefault(g.Logger)
	return cfg, nil
}

// NewLogger returns a text or JSON logger as configured. Verbose forces the
// debug level.
func NewLogger(w io.Writer, cfg *config.Config, verbose bool) *slog.Logger {
	level := cfg.Logging.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Logging.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
