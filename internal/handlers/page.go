package handlers

import (
	"context"
	"log/slog"
	"path"
	"slices"
	"strings"

	"git.home.luguber.info/inful/webtree/internal/foundation/errors"
	"git.home.luguber.info/inful/webtree/internal/logfields"
	"git.home.luguber.info/inful/webtree/internal/markdown"
	"git.home.luguber.info/inful/webtree/internal/page"
	"git.home.luguber.info/inful/webtree/internal/tree"
)

// PageExt is the source extension of page files.
const PageExt = ".page"

// OutputExt is the extension of rendered page nodes.
const OutputExt = ".html"

// PageHandler turns page files into written HTML nodes.
type PageHandler struct {
	pageNodes
}

// NewPageHandler returns a page handler. Blocks without a format option use
// deps.DefaultFormat, "markdown" when empty.
func NewPageHandler(deps Deps) *PageHandler {
	format := deps.DefaultFormat
	if format == "" {
		format = "markdown"
	}
	return &PageHandler{pageNodes{deps: deps, defaultFormat: format}}
}

func (h *PageHandler) Name() string { return "page" }

// Accepts reports whether name is a page file.
func (h *PageHandler) Accepts(name string) bool {
	return strings.HasSuffix(name, PageExt)
}

// OutputName maps a page source name to its node path, e.g. "index.page" to
// "index.html".
func OutputName(src string) string {
	base := path.Base(src)
	return strings.TrimSuffix(base, path.Ext(base)) + OutputExt
}

// CreateNode creates the node of the page file src below parent.
func (h *PageHandler) CreateNode(parent *tree.Node, src string, data []byte, meta map[string]any) (*tree.Node, error) {
	return h.createPage(parent, OutputName(src), src, data, meta)
}

// CreateFromData creates a page node at path from in-memory data. The node has
// no source file.
func (h *PageHandler) CreateFromData(parent *tree.Node, path string, data []byte, meta map[string]any) (*tree.Node, error) {
	return h.createPage(parent, path, "", data, meta)
}

func (h *PageHandler) createPage(parent *tree.Node, path, src string, data []byte, meta map[string]any) (*tree.Node, error) {
	p, err := h.parse(data, meta)
	if err != nil {
		return nil, err
	}
	n, err := h.create(parent, path, src, data, p, h)
	if err != nil {
		return nil, err
	}
	h.addFragments(n)
	return n, nil
}

// addFragments creates a "#id" child for every heading of a markdown content
// block.
func (h *PageHandler) addFragments(n *tree.Node) {
	if h.deps.Markdown == nil {
		return
	}
	b, ok := n.Page().Block(page.DefaultBlockName)
	if !ok || !(slices.Contains(b.Format, "markdown") || slices.Contains(b.Format, "md")) {
		return
	}
	for i, heading := range markdown.Headings(h.deps.Markdown, []byte(b.Content)) {
		child, err := n.Tree().NewNode(n, "#"+heading.ID)
		if err != nil {
			h.deps.logger().Debug("Skipping fragment",
				logfields.NodePath(n.FullPath()),
				slog.String("fragment", heading.ID),
				logfields.Error(err))
			continue
		}
		child.Meta = tree.MetaInfo{"title": heading.Text, "orderInfo": i + 1}
		child.Info = tree.RenderInfo{Source: n.Info.Source, Handler: fragmentHandler{}}
	}
}

// RenderNode renders a block of n through its template chain.
func (h *PageHandler) RenderNode(ctx context.Context, n *tree.Node, block string, useTemplates bool) (string, error) {
	return h.renderNode(ctx, n, block, useTemplates)
}

// WriteInfo renders the content block with templates.
func (h *PageHandler) WriteInfo(ctx context.Context, n *tree.Node) (*tree.Output, error) {
	if h.deps.Renderer == nil {
		return nil, errors.RenderError("node not rendered").WithContext("node", n.FullPath()).Build()
	}
	res, ok := h.deps.Renderer.RenderBlock(ctx, n, page.DefaultBlockName, true)
	if !ok {
		return nil, errors.RenderError("node not rendered").
			WithContext("node", n.FullPath()).
			WithContext("block", page.DefaultBlockName).
			Build()
	}
	return &tree.Output{Data: []byte(res.Content)}, nil
}

type fragmentHandler struct{}

func (fragmentHandler) Name() string { return "fragment" }
