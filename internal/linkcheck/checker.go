// Package linkcheck is a listener that warns about links in rendered output
// which do not resolve to a node of the output tree.
package linkcheck

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"git.home.luguber.info/inful/webtree/internal/events"
	"git.home.luguber.info/inful/webtree/internal/logfields"
	"git.home.luguber.info/inful/webtree/internal/plugin"
)

const version = "v1.0.0"

// BrokenLink is an internal link that failed to resolve.
type BrokenLink struct {
	Node string
	Link Link
	Err  error
}

// Checker resolves the internal links of every rendered block against the
// node it was rendered for.
type Checker struct {
	plugin.BasePlugin

	logger *slog.Logger

	mu     sync.Mutex
	broken []BrokenLink
}

// New returns a checker logging to slog.Default until Init supplies a logger.
func New() *Checker {
	return &Checker{logger: slog.Default()}
}

func (c *Checker) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:         "linkcheck",
		Version:      version,
		Type:         plugin.PluginTypeListener,
		Description:  "Warns about links in rendered output that do not resolve to a node",
		Capabilities: []string{"listens:" + events.EventAfterNodeRendered},
	}
}

// Init resets the findings of a previous build.
func (c *Checker) Init(pctx *plugin.PluginContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pctx != nil && pctx.Logger != nil {
		c.logger = pctx.Logger
	}
	c.broken = nil
	return nil
}

// Events returns the events the checker subscribes to.
func (c *Checker) Events() []string {
	return []string{events.EventAfterNodeRendered}
}

// HandleEvent checks the links of a rendered block.
func (c *Checker) HandleEvent(_ context.Context, e events.Event) error {
	rendered, ok := e.(events.NodeRendered)
	if !ok || rendered.Node == nil {
		return nil
	}
	links, err := ExtractLinks(strings.NewReader(rendered.Output))
	if err != nil {
		return err
	}
	for _, l := range links {
		if !IsInternal(l.URL) {
			continue
		}
		if _, err := rendered.Node.Lookup(l.URL); err != nil {
			c.report(BrokenLink{Node: rendered.Node.FullPath(), Link: l, Err: err}, rendered)
		}
	}
	return nil
}

func (c *Checker) report(b BrokenLink, e events.NodeRendered) {
	c.mu.Lock()
	c.broken = append(c.broken, b)
	logger := c.logger
	c.mu.Unlock()
	logger.Warn("Unresolved link",
		logfields.NodePath(b.Node),
		logfields.Block(e.Block),
		logfields.Link(b.Link.URL),
		slog.String("tag", b.Link.Tag),
		logfields.BuildID(e.BuildID),
		logfields.Error(b.Err))
}

// Broken returns the unresolved links found since the last Init.
func (c *Checker) Broken() []BrokenLink {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]BrokenLink(nil), c.broken...)
}
