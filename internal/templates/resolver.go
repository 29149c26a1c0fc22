// Package templates computes the template chain of a node: the templates
// declared by its ancestors, outermost first, followed by the node itself.
package templates

import (
	"log/slog"

	"git.home.luguber.info/inful/webtree/internal/logfields"
	"git.home.luguber.info/inful/webtree/internal/tree"
)

// DefaultTemplateName is the file name a directory uses to declare its template.
const DefaultTemplateName = "default.template"

// MetaKey is the page meta key that overrides or disables templates.
const MetaKey = "template"

// Lookup answers whether a directory declares a template.
type Lookup interface {
	TemplateFor(dir *tree.Node) (*tree.Node, bool)
}

// DirectoryLookup finds a template as a direct child of the directory.
type DirectoryLookup struct {
	// Name of the template file, DefaultTemplateName when empty.
	Name string
}

func (l DirectoryLookup) TemplateFor(dir *tree.Node) (*tree.Node, bool) {
	if dir == nil || !(dir.IsDirectory() || dir.IsRoot()) {
		return nil, false
	}
	name := l.Name
	if name == "" {
		name = DefaultTemplateName
	}
	t := dir.Child(name)
	return t, t != nil
}

// Resolver builds template chains. It holds no state besides its
// collaborators and may be shared between goroutines once the tree is frozen.
type Resolver struct {
	lookup Lookup
	logger *slog.Logger
}

// NewResolver returns a resolver using lookup. A nil lookup uses
// DirectoryLookup with the default name.
func NewResolver(lookup Lookup, logger *slog.Logger) *Resolver {
	if lookup == nil {
		lookup = DirectoryLookup{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{lookup: lookup, logger: logger}
}

// Chain returns the templates applying to n, root-most first, with n last.
//
// A "template" meta value of null or false disables templates. A string value
// is resolved relative to n and replaces the innermost ancestor template; if it
// does not resolve the ancestor templates are used unchanged.
func (r *Resolver) Chain(n *tree.Node) []*tree.Node {
	return append(r.Templates(n), n)
}

// Templates returns Chain(n) without n.
func (r *Resolver) Templates(n *tree.Node) []*tree.Node {
	override, disabled := r.override(n)
	if disabled {
		return nil
	}

	var chain []*tree.Node
	for dir := n.Parent(); dir != nil; dir = dir.Parent() {
		t, ok := r.lookup.TemplateFor(dir)
		if !ok || t == n {
			continue
		}
		chain = append(chain, t)
	}
	// Collected innermost first.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	if override != nil {
		if len(chain) > 0 {
			chain[len(chain)-1] = override
		} else {
			chain = append(chain, override)
		}
	}
	return chain
}

func (r *Resolver) override(n *tree.Node) (*tree.Node, bool) {
	v, ok := n.Meta[MetaKey]
	if !ok {
		return nil, false
	}
	switch val := v.(type) {
	case nil:
		return nil, true
	case bool:
		return nil, !val
	case string:
		if val == "" {
			return nil, false
		}
		t, err := n.Lookup(val)
		if err != nil || t == n {
			r.logger.Warn("Template not found, using inherited templates",
				logfields.NodePath(n.FullPath()),
				slog.String("template", val),
				logfields.Error(err))
			return nil, false
		}
		return t, false
	default:
		r.logger.Warn("Ignoring template meta value of unexpected type",
			logfields.NodePath(n.FullPath()),
			slog.Any("template", v))
		return nil, false
	}
}
