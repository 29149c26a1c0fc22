package handlers

import (
	"git.home.luguber.info/inful/webtree/internal/tree"
)

// DirectoryHandler creates directory nodes.
type DirectoryHandler struct{}

func (DirectoryHandler) Name() string { return "directory" }

// CreateDirectory returns the directory node name below parent, creating it
// when missing. meta is merged into the node meta.
func (h DirectoryHandler) CreateDirectory(parent *tree.Node, name string, meta map[string]any) (*tree.Node, error) {
	dir := name + "/"
	n := parent.Child(dir)
	if n == nil {
		var err error
		if n, err = parent.Tree().NewNode(parent, dir); err != nil {
			return nil, err
		}
		n.Meta = tree.MetaInfo{}
		n.Info.Handler = h
	}
	for k, v := range meta {
		n.Meta[k] = v
	}
	return n, nil
}

// NodeChanged reports false: directories have no content of their own.
func (DirectoryHandler) NodeChanged(*tree.Node) bool { return false }
