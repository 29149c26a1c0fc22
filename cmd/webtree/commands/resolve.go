package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"git.home.luguber.info/inful/webtree/internal/tree"
)

// ResolveCmd implements the 'resolve' command.
type ResolveCmd struct {
	From string `arg:"" help:"Node to resolve from, relative to the output root (e.g. docs/guide.html)"`
	Path string `arg:"" help:"Path to resolve, relative to the node or absolute"`
}

func (c *ResolveCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(g, root)
	if err != nil {
		return err
	}
	site, err := loadSite(context.Background(), cfg, g)
	if err != nil {
		return err
	}
	return Resolve(os.Stdout, site.Root, c.From, c.Path)
}

// Resolve prints the full path of path resolved from the node at from, and
// the route from that node to it.
func Resolve(w io.Writer, root *tree.Node, from, path string) error {
	base, err := root.Lookup(from)
	if err != nil {
		return err
	}
	target, err := base.Lookup(path)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "%s\t%s\n", target.FullPath(), base.RouteTo(target))
	return nil
}
