package tree

import (
	"fmt"

	"git.home.luguber.info/inful/webtree/internal/foundation/errors"
	"git.home.luguber.info/inful/webtree/internal/page"
	"git.home.luguber.info/inful/webtree/internal/pathaddr"
)

// MetaInfo holds meta information such as title, orderInfo and lang.
type MetaInfo map[string]any

// String returns the value for key if it is a string.
func (m MetaInfo) String(key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// ChangePredicate reports whether a node must be rendered again.
type ChangePredicate interface {
	Changed() bool
}

// RenderInfo holds build-time associations of a node.
type RenderInfo struct {
	// Source is the source file the node was created from.
	Source string
	// Handler is the processor that created the node and serves its capabilities.
	Handler Handler
	// Page is the parsed page structure, nil for nodes without blocks.
	Page *page.Page
	// Fingerprint identifies the source content the node was created from.
	Fingerprint string
	// Change is evaluated lazily by Changed.
	Change ChangePredicate
}

// Node is an entry of the output tree.
type Node struct {
	tree     *Tree
	id       NodeID
	parent   NodeID
	children []NodeID
	addr     pathaddr.Address

	Meta MetaInfo
	Info RenderInfo
}

// ID returns the node handle.
func (n *Node) ID() NodeID { return n.id }

// Tree returns the owning tree, nil once the node has been removed.
func (n *Node) Tree() *Tree { return n.tree }

// Path returns the path relative to the parent.
func (n *Node) Path() string { return n.addr.String() }

// Address returns the classified path.
func (n *Node) Address() pathaddr.Address { return n.addr }

// Parent returns the parent node, nil for the root.
func (n *Node) Parent() *Node {
	if n.tree == nil {
		return nil
	}
	return n.tree.Node(n.parent)
}

// IsRoot reports whether n is the root of its tree.
func (n *Node) IsRoot() bool {
	return n.tree != nil && n.tree.root == n.id
}

// Root returns the root of the tree n belongs to.
func (n *Node) Root() *Node {
	node := n
	for p := node.Parent(); p != nil; p = node.Parent() {
		node = p
	}
	return node
}

// Children returns the children in insertion order.
func (n *Node) Children() []*Node {
	if n.tree == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.children))
	for _, id := range n.children {
		if c := n.tree.Node(id); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the first child whose path equals path.
func (n *Node) Child(path string) *Node {
	for _, c := range n.Children() {
		if c.Path() == path {
			return c
		}
	}
	return nil
}

// SetParent moves n below m: n is removed from the old parent's children and
// appended to m's children. Moving a node into its own subtree, into another
// tree or next to a colliding sibling fails and leaves the tree unchanged.
func (n *Node) SetParent(m *Node) error {
	if n.tree == nil || m == nil || m.tree != n.tree {
		return ErrForeignNode
	}
	if n.IsRoot() {
		return errors.TreeError("reparenting would create a cycle").
			WithContext("node", n.FullPath()).
			WithContext("reason", "root cannot be reparented").
			Build()
	}
	if m.InSubtreeOf(n) {
		return errors.TreeError("reparenting would create a cycle").
			WithContext("node", n.FullPath()).
			WithContext("parent", m.FullPath()).
			Build()
	}
	if err := checkSiblings(m, n.addr, n); err != nil {
		return err
	}
	if old := n.Parent(); old != nil {
		old.children = removeID(old.children, n.id)
	}
	n.parent = m.id
	m.children = append(m.children, n.id)
	return nil
}

// IsDirectory reports whether the node path ends with a slash.
func (n *Node) IsDirectory() bool { return n.addr.IsDirectory() }

// IsFragment reports whether the node path starts with a hash sign.
func (n *Node) IsFragment() bool { return n.addr.IsFragment() }

// IsFile reports whether the node is neither a directory nor a fragment.
func (n *Node) IsFile() bool { return n.addr.IsFile() }

// Level returns the depth of the node, 0 for the root.
func (n *Node) Level() int {
	level := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		level++
	}
	return level
}

// Page returns the parsed page of the node.
func (n *Node) Page() *page.Page { return n.Info.Page }

// MetaValue returns the meta value for key.
func (n *Node) MetaValue(key string) (any, bool) {
	v, ok := n.Meta[key]
	return v, ok
}

// Title returns the title meta value or "".
func (n *Node) Title() string {
	switch v := n.Meta["title"].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// LinkFrom resolves path relative to n and returns the route from target to it.
func (n *Node) LinkFrom(target page.Element, path string) (string, bool) {
	dest := n.Resolve(path)
	if dest == nil {
		return path, false
	}
	from, ok := target.(*Node)
	if !ok {
		return path, false
	}
	return from.RouteTo(dest), true
}

// String returns the full path.
func (n *Node) String() string { return n.FullPath() }

// GoString returns an informative representation of the node.
func (n *Node) GoString() string {
	return fmt.Sprintf("<tree.Node: path=%s>", n.FullPath())
}
