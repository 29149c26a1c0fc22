package tree

import (
	"git.home.luguber.info/inful/webtree/internal/foundation/errors"
	"git.home.luguber.info/inful/webtree/internal/pathaddr"
)

// NodeID is a handle to a node inside its Tree.
type NodeID int

// NoNode is the parent handle of the root.
const NoNode NodeID = -1

// Tree is the arena owning all nodes of one output hierarchy.
type Tree struct {
	nodes []*Node
	root  NodeID
	live  int
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{root: NoNode}
}

// NewRoot creates the root node. The root path is usually the output
// directory ("site/") and is stripped when URLs are computed.
func (t *Tree) NewRoot(path string) (*Node, error) {
	return t.NewNode(nil, path)
}

// NewNode creates a node below parent. A nil parent creates the root, which
// fails if the tree already has one.
func (t *Tree) NewNode(parent *Node, path string) (*Node, error) {
	addr, err := pathaddr.Parse(path)
	if err != nil && !(parent == nil && path == "") {
		return nil, err
	}
	if parent == nil {
		if t.root != NoNode {
			return nil, ErrRootExists
		}
		n := t.alloc(addr)
		t.root = n.id
		return n, nil
	}
	if parent.tree != t {
		return nil, errors.TreeError("node belongs to another tree").
			WithContext("parent", parent.FullPath()).
			Build()
	}
	if err := checkSiblings(parent, addr, nil); err != nil {
		return nil, err
	}
	n := t.alloc(addr)
	n.parent = parent.id
	parent.children = append(parent.children, n.id)
	return n, nil
}

func (t *Tree) alloc(addr pathaddr.Address) *Node {
	n := &Node{
		tree:   t,
		id:     NodeID(len(t.nodes)),
		parent: NoNode,
		addr:   addr,
		Meta:   MetaInfo{},
	}
	t.nodes = append(t.nodes, n)
	t.live++
	return n
}

// Root returns the root node or nil for an empty tree.
func (t *Tree) Root() *Node {
	return t.Node(t.root)
}

// Node returns the live node with the given handle, or nil.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Len returns the number of live nodes.
func (t *Tree) Len() int { return t.live }

// Remove detaches n from its parent and releases its whole subtree. The root
// cannot be removed.
func (t *Tree) Remove(n *Node) error {
	if n == nil || n.tree != t {
		return ErrForeignNode
	}
	if n.id == t.root {
		return errors.TreeError("cannot remove the root node").Build()
	}
	if p := n.Parent(); p != nil {
		p.children = removeID(p.children, n.id)
	}
	t.release(n)
	return nil
}

func (t *Tree) release(n *Node) {
	for _, c := range n.children {
		if child := t.Node(c); child != nil {
			t.release(child)
		}
	}
	t.nodes[n.id] = nil
	t.live--
	n.children = nil
	n.parent = NoNode
	n.tree = nil
}

// Walk visits the tree depth-first in children order, parents before
// children. Returning SkipChildren from fn skips the node's subtree.
func (t *Tree) Walk(fn func(n *Node) error) error {
	root := t.Root()
	if root == nil {
		return nil
	}
	err := walk(root, fn)
	if err == SkipChildren {
		return nil
	}
	return err
}

// SkipChildren can be returned by a Walk callback to skip a subtree.
var SkipChildren = errors.NewError(errors.CategoryInternal, "skip children").Build()

func walk(n *Node, fn func(*Node) error) error {
	if err := fn(n); err != nil {
		if err == SkipChildren {
			return nil
		}
		return err
	}
	for _, c := range n.Children() {
		if err := walk(c, fn); err != nil {
			return err
		}
	}
	return nil
}

// Nodes returns all live nodes in Walk order.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, 0, t.live)
	_ = t.Walk(func(n *Node) error {
		out = append(out, n)
		return nil
	})
	return out
}

// checkSiblings rejects "dir/file" next to "dir/" in either order.
func checkSiblings(parent *Node, addr pathaddr.Address, self *Node) error {
	for _, s := range parent.Children() {
		if s == self {
			continue
		}
		if collides(addr, s.addr) || collides(s.addr, addr) {
			return errors.TreeError("path collides with sibling").
				WithContext("path", addr.String()).
				WithContext("sibling", s.addr.String()).
				WithContext("parent", parent.FullPath()).
				Build()
		}
	}
	return nil
}

func collides(compound, dir pathaddr.Address) bool {
	return compound.IsCompound() && dir.Kind() == pathaddr.Directory && compound.FirstSegment() == dir.String()
}

func removeID(ids []NodeID, id NodeID) []NodeID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
