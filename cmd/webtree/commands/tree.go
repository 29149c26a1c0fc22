package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/webtree/internal/build"
	"git.home.luguber.info/inful/webtree/internal/config"
	"git.home.luguber.info/inful/webtree/internal/state"
	"git.home.luguber.info/inful/webtree/internal/tree"
)

// TreeCmd implements the 'tree' command.
type TreeCmd struct {
	Fragments bool `help:"Include fragment nodes"`
}

func (c *TreeCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(g, root)
	if err != nil {
		return err
	}
	site, err := loadSite(context.Background(), cfg, g)
	if err != nil {
		return err
	}
	PrintTree(os.Stdout, site.Root, c.Fragments)
	return nil
}

// loadSite builds the output tree without touching the state file.
func loadSite(ctx context.Context, cfg *config.Config, g *Global) (*build.Site, error) {
	builder, err := build.New(cfg, build.WithLogger(g.Logger), build.WithStore(state.NewMemoryStore()))
	if err != nil {
		return nil, err
	}
	defer func() { _ = builder.Close() }()
	return builder.Load(ctx, uuid.NewString())
}

// PrintTree writes n and its descendants in sorted order, one per line.
func PrintTree(w io.Writer, n *tree.Node, fragments bool) {
	printNode(w, n, 0, fragments)
}

func printNode(w io.Writer, n *tree.Node, depth int, fragments bool) {
	name := n.Path()
	if n.IsRoot() {
		name = n.FullPath()
	}
	line := strings.Repeat("  ", depth) + name
	if title := n.Title(); title != "" && title != n.Path() {
		line += fmt.Sprintf(" %q", title)
	}
	if n.Info.Handler != nil {
		line += " [" + n.Info.Handler.Name() + "]"
	}
	_, _ = fmt.Fprintln(w, line)
	for _, c := range n.SortedChildren() {
		if c.IsFragment() && !fragments {
			continue
		}
		printNode(w, c, depth+1, fragments)
	}
}
