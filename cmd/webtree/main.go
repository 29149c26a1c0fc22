package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/webtree/cmd/webtree/commands"
	ferrors "git.home.luguber.info/inful/webtree/internal/foundation/errors"
	"git.home.luguber.info/inful/webtree/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{}
	ctx := kong.Parse(&cli,
		kong.Name("webtree"),
		kong.Description("Render a source directory of pages, templates and static files into an output tree."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)
	if err := ctx.Run(&cli); err != nil {
		logger := global.Logger
		if logger == nil {
			logger = slog.Default()
		}
		ferrors.NewCLIErrorAdapter(cli.Verbose, logger).HandleError(err)
	}
}
