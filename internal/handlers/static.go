package handlers

import (
	"context"
	"path"

	"git.home.luguber.info/inful/webtree/internal/change"
	"git.home.luguber.info/inful/webtree/internal/foundation/errors"
	"git.home.luguber.info/inful/webtree/internal/tree"
)

// StaticHandler copies files verbatim. It accepts every file and must be
// consulted last.
type StaticHandler struct {
	changes *change.Oracle
}

// NewStaticHandler returns a static handler attaching source-only change
// predicates from changes, which may be nil.
func NewStaticHandler(changes *change.Oracle) *StaticHandler {
	return &StaticHandler{changes: changes}
}

func (h *StaticHandler) Name() string { return "static" }

func (h *StaticHandler) Accepts(string) bool { return true }

// CreateNode creates the node of the file src below parent.
func (h *StaticHandler) CreateNode(parent *tree.Node, src string, data []byte, meta map[string]any) (*tree.Node, error) {
	name := path.Base(src)
	if parent.Child(name) != nil {
		return nil, errors.TreeError("node already exists").
			WithContext("node", parent.FullPath()+name).
			WithContext("source", src).
			Build()
	}
	n, err := parent.Tree().NewNode(parent, name)
	if err != nil {
		return nil, err
	}
	n.Meta = tree.MetaInfo{}
	for k, v := range meta {
		n.Meta[k] = v
	}
	n.Info = tree.RenderInfo{Source: src, Handler: h, Fingerprint: change.StaticFingerprint(data)}
	if h.changes != nil {
		n.Info.Change = h.changes.SourceCheckFor(n)
	}
	return n, nil
}

// WriteInfo asks the writer to copy the source file.
func (h *StaticHandler) WriteInfo(_ context.Context, n *tree.Node) (*tree.Output, error) {
	return &tree.Output{CopyFrom: n.Info.Source}, nil
}

func (h *StaticHandler) NodeChanged(*tree.Node) bool { return true }
