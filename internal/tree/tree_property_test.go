//go:build property

package tree

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// buildRandomTree attaches one node per choice below an existing directory.
func buildRandomTree(choices []int) (*Tree, error) {
	tr := New()
	root, err := tr.NewRoot("site/")
	if err != nil {
		return nil, err
	}
	dirs := []*Node{root}
	for i, c := range choices {
		parent := dirs[c%len(dirs)]
		path := fmt.Sprintf("f%d.html", i)
		if c%2 == 0 {
			path = fmt.Sprintf("d%d/", i)
		}
		n, err := tr.NewNode(parent, path)
		if err != nil {
			return nil, err
		}
		if n.IsDirectory() {
			dirs = append(dirs, n)
		} else if c%3 == 0 {
			if _, err := tr.NewNode(n, fmt.Sprintf("#s%d", i)); err != nil {
				return nil, err
			}
		}
	}
	return tr, nil
}

func TestTreeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("every node resolves from its parent and from its url", prop.ForAll(
		func(choices []int) bool {
			tr, err := buildRandomTree(choices)
			if err != nil {
				return false
			}
			root := tr.Root()
			for _, n := range tr.Nodes() {
				if n.IsRoot() {
					continue
				}
				if n.Parent().Resolve(n.Path()) != n {
					return false
				}
				if root.Resolve(n.ToURL().String()) != n {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.Property("nodes lie in the subtree of all their ancestors", prop.ForAll(
		func(choices []int) bool {
			tr, err := buildRandomTree(choices)
			if err != nil {
				return false
			}
			for _, n := range tr.Nodes() {
				for a := n; a != nil; a = a.Parent() {
					if !n.InSubtreeOf(a) {
						return false
					}
				}
				if n.Level() > 0 && n.Parent().InSubtreeOf(n) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
	))

	properties.Property("routes resolve back to their target", prop.ForAll(
		func(choices []int, from, to int) bool {
			tr, err := buildRandomTree(choices)
			if err != nil {
				return false
			}
			nodes := tr.Nodes()
			a, b := nodes[from%len(nodes)], nodes[to%len(nodes)]
			if a == b {
				return true
			}
			return a.Resolve(a.RouteTo(b)) == b
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
	))

	properties.Property("sorting orders by orderInfo", prop.ForAll(
		func(orders []int) bool {
			tr := New()
			root, _ := tr.NewRoot("site/")
			var nodes []*Node
			for i, o := range orders {
				n, err := tr.NewNode(root, fmt.Sprintf("n%d.html", i))
				if err != nil {
					return false
				}
				n.Meta["orderInfo"] = o
				nodes = append(nodes, n)
			}
			SortNodes(nodes)
			for i := 1; i < len(nodes); i++ {
				if nodes[i-1].OrderInfo() > nodes[i].OrderInfo() {
					return false
				}
			}
			return len(nodes) == len(orders)
		},
		gen.SliceOf(gen.IntRange(-50, 50)),
	))

	properties.TestingRun(t)
}
