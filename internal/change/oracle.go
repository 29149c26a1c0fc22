// Package change decides whether a node must be rendered again: a node is
// stale when its own source changed or when any template in its chain did.
package change

import (
	"strings"

	"git.home.luguber.info/inful/webtree/internal/tree"
)

// Sources answers whether the source of a single node changed since the last
// build.
type Sources interface {
	Changed(n *tree.Node) bool
}

// TemplateResolver returns the templates applying to a node.
type TemplateResolver interface {
	Templates(n *tree.Node) []*tree.Node
}

// ChainSources is implemented by Sources that also remember the template
// chain a node was last committed with.
type ChainSources interface {
	ChainChanged(n *tree.Node, signature string) bool
}

// ChainSignature identifies a template chain by the ordered full paths of its
// templates. An empty chain has the empty signature.
func ChainSignature(templates []*tree.Node) string {
	paths := make([]string, len(templates))
	for i, t := range templates {
		paths[i] = t.FullPath()
	}
	return strings.Join(paths, "\n")
}

// Oracle combines source changes and template chains.
type Oracle struct {
	Sources   Sources
	Templates TemplateResolver
}

// Stale reports whether n or any template of n changed, or whether the
// template chain itself differs from the recorded one (a template was added,
// removed or overridden). Templates are resolved on each call, so a changed
// template marks every dependent page without a reverse index.
func (o *Oracle) Stale(n *tree.Node) bool {
	if o.Sources.Changed(n) {
		return true
	}
	tmpls := o.Templates.Templates(n)
	if cs, ok := o.Sources.(ChainSources); ok && cs.ChainChanged(n, ChainSignature(tmpls)) {
		return true
	}
	for _, t := range tmpls {
		if o.Sources.Changed(t) {
			return true
		}
	}
	return false
}

// CheckFor returns the change predicate to store on n's RenderInfo.
func (o *Oracle) CheckFor(n *tree.Node) Check {
	return Check{Node: n, Oracle: o}
}

// Check is the change predicate of one node. It is evaluated on demand by
// tree.Node.Changed.
type Check struct {
	Node   *tree.Node
	Oracle *Oracle
}

func (c Check) Changed() bool {
	return c.Oracle.Stale(c.Node)
}

// SourceCheckFor returns a predicate that ignores templates, for nodes that
// are copied rather than rendered.
func (o *Oracle) SourceCheckFor(n *tree.Node) SourceCheck {
	return SourceCheck{Node: n, Sources: o.Sources}
}

// SourceCheck reports only changes of the node's own source.
type SourceCheck struct {
	Node    *tree.Node
	Sources Sources
}

func (c SourceCheck) Changed() bool {
	return c.Sources.Changed(c.Node)
}
