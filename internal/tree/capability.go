package tree

import (
	"context"

	"git.home.luguber.info/inful/webtree/internal/foundation/errors"
)

// Handler is the processor that created a node. Per-node behaviour is
// provided by also implementing BlockRenderer, Writer or ChangeReporter.
type Handler interface {
	Name() string
}

// BlockRenderer renders a block of a node.
type BlockRenderer interface {
	RenderNode(ctx context.Context, n *Node, block string, useTemplates bool) (string, error)
}

// Output is what a Writer produces for a node: either rendered data or a
// source file to copy.
type Output struct {
	Data     []byte
	CopyFrom string
}

// Writer produces the output of a node.
type Writer interface {
	WriteInfo(ctx context.Context, n *Node) (*Output, error)
}

// ChangeReporter reports whether a node changed since the last build.
type ChangeReporter interface {
	NodeChanged(n *Node) bool
}

// RenderBlock forwards to the node's handler.
func (n *Node) RenderBlock(ctx context.Context, block string, useTemplates bool) (string, error) {
	r, ok := n.Info.Handler.(BlockRenderer)
	if !ok {
		return "", n.unsupported("RenderBlock")
	}
	return r.RenderNode(ctx, n, block, useTemplates)
}

// WriteInfo forwards to the node's handler.
func (n *Node) WriteInfo(ctx context.Context) (*Output, error) {
	w, ok := n.Info.Handler.(Writer)
	if !ok {
		return nil, n.unsupported("WriteInfo")
	}
	return w.WriteInfo(ctx, n)
}

// Changed evaluates the node's change predicate, falling back to the handler.
func (n *Node) Changed() (bool, error) {
	if n.Info.Change != nil {
		return n.Info.Change.Changed(), nil
	}
	c, ok := n.Info.Handler.(ChangeReporter)
	if !ok {
		return false, n.unsupported("Changed")
	}
	return c.NodeChanged(n), nil
}

func (n *Node) unsupported(op string) error {
	handler := "<none>"
	if n.Info.Handler != nil {
		handler = n.Info.Handler.Name()
	}
	return errors.NewError(errors.CategoryRender, "unsupported operation").
		WithContext("operation", op).
		WithContext("handler", handler).
		WithContext("node", n.FullPath()).
		Build()
}
