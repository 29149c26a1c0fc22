// Package handlers creates tree nodes from source files and serves their
// rendering, writing and change capabilities.
package handlers

import (
	"context"
	"log/slog"

	"github.com/yuin/goldmark"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/webtree/internal/change"
	"git.home.luguber.info/inful/webtree/internal/foundation/errors"
	"git.home.luguber.info/inful/webtree/internal/logfields"
	"git.home.luguber.info/inful/webtree/internal/page"
	"git.home.luguber.info/inful/webtree/internal/render"
	"git.home.luguber.info/inful/webtree/internal/tree"
)

// ErrNodeExists is returned when a handler would create a node whose path is
// already taken by a sibling.
var ErrNodeExists = errors.TreeError("node already exists").Build()

// Renderer renders blocks of nodes.
type Renderer interface {
	Render(ctx context.Context, n *tree.Node, block string, useTemplates bool) (render.Result, error)
	RenderBlock(ctx context.Context, n *tree.Node, block string, useTemplates bool) (render.Result, bool)
}

// Deps are the collaborators shared by all handlers.
type Deps struct {
	Renderer Renderer
	// Changes attaches change predicates to created nodes. Without it
	// every node reports itself as changed.
	Changes *change.Oracle
	// Markdown parses content blocks for fragment nodes.
	Markdown goldmark.Markdown
	// Lang is the default lang meta value.
	Lang string
	// DefaultFormat is the processor pipeline of blocks without a format
	// option.
	DefaultFormat string
	Logger        *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// CanonicalLang returns the canonical BCP 47 form of lang, e.g. "en-US" for
// "en_us".
func CanonicalLang(lang string) (string, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return "", errors.ValidationError("invalid language tag").
			WithCause(err).
			WithContext("lang", lang).
			Build()
	}
	return tag.String(), nil
}

// pageNodes is the part shared by handlers of files with a page structure.
type pageNodes struct {
	deps          Deps
	defaultFormat string
}

func (b *pageNodes) parse(data []byte, meta map[string]any) (*page.Page, error) {
	defaults := map[string]any{}
	if b.deps.Lang != "" {
		defaults["lang"] = b.deps.Lang
	}
	for k, v := range meta {
		defaults[k] = v
	}
	p, err := page.Parse(data, page.Options{DefaultFormat: b.defaultFormat, Meta: defaults})
	if err != nil {
		return nil, err
	}
	if lang, ok := p.Meta["lang"].(string); ok && lang != "" {
		canonical, err := CanonicalLang(lang)
		if err != nil {
			b.deps.logger().Warn("Ignoring invalid lang meta value", slog.String("lang", lang), logfields.Error(err))
			if b.deps.Lang != "" {
				p.Meta["lang"] = b.deps.Lang
			} else {
				delete(p.Meta, "lang")
			}
		} else {
			p.Meta["lang"] = canonical
		}
	}
	return p, nil
}

// create adds a node at path below parent and attaches p to it.
func (b *pageNodes) create(parent *tree.Node, path, src string, data []byte, p *page.Page, h tree.Handler) (*tree.Node, error) {
	if parent.Child(path) != nil {
		return nil, errors.TreeError("node already exists").
			WithContext("node", parent.FullPath()+path).
			WithContext("source", src).
			Build()
	}
	fp, err := change.PageFingerprint(p.Meta, data)
	if err != nil {
		return nil, err
	}
	n, err := parent.Tree().NewNode(parent, path)
	if err != nil {
		return nil, err
	}
	n.Meta = tree.MetaInfo(p.Meta)
	n.Info = tree.RenderInfo{Source: src, Handler: h, Page: p, Fingerprint: fp}
	if b.deps.Changes != nil {
		n.Info.Change = b.deps.Changes.CheckFor(n)
	}
	return n, nil
}

func (b *pageNodes) renderNode(ctx context.Context, n *tree.Node, block string, useTemplates bool) (string, error) {
	if b.deps.Renderer == nil {
		return "", errors.NewError(errors.CategoryRender, "unsupported operation").
			WithContext("operation", "RenderBlock").
			WithContext("node", n.FullPath()).
			Build()
	}
	res, err := b.deps.Renderer.Render(ctx, n, block, useTemplates)
	if err != nil {
		return "", err
	}
	return res.Content, nil
}

// NodeChanged is used when no change predicate is attached: everything is
// rebuilt.
func (b *pageNodes) NodeChanged(*tree.Node) bool { return true }
