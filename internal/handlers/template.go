package handlers

import (
	"context"
	"path"
	"strings"

	"git.home.luguber.info/inful/webtree/internal/tree"
)

// TemplateExt is the source extension of template files.
const TemplateExt = ".template"

// TemplateHandler creates template nodes. Templates are rendered as part of
// the chains of other nodes and are never written themselves.
type TemplateHandler struct {
	pageNodes
}

// NewTemplateHandler returns a template handler. Template blocks default to
// the "template" format.
func NewTemplateHandler(deps Deps) *TemplateHandler {
	return &TemplateHandler{pageNodes{deps: deps, defaultFormat: "template"}}
}

func (h *TemplateHandler) Name() string { return "template" }

// Accepts reports whether name is a template file.
func (h *TemplateHandler) Accepts(name string) bool {
	return strings.HasSuffix(name, TemplateExt)
}

// CreateNode creates the node of the template file src below parent. The node
// keeps the source file name.
func (h *TemplateHandler) CreateNode(parent *tree.Node, src string, data []byte, meta map[string]any) (*tree.Node, error) {
	p, err := h.parse(data, meta)
	if err != nil {
		return nil, err
	}
	return h.create(parent, path.Base(src), src, data, p, h)
}

// RenderNode renders a block of the template, nested into the templates of
// its own ancestors when useTemplates is set.
func (h *TemplateHandler) RenderNode(ctx context.Context, n *tree.Node, block string, useTemplates bool) (string, error) {
	return h.renderNode(ctx, n, block, useTemplates)
}
