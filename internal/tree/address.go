package tree

import (
	"net/url"
	"strings"

	"git.home.luguber.info/inful/webtree/internal/foundation/errors"
)

// URLScheme and URLHost form the placeholder base of all node URLs.
const (
	URLScheme = "webtree"
	URLHost   = "webtree.localhost"
)

// FullPath returns the concatenation of all ancestor paths and the node path.
// An absolute path is returned verbatim.
func (n *Node) FullPath() string {
	if n.addr.IsAbsolute() {
		return n.addr.String()
	}
	p := n.Parent()
	if p == nil {
		return n.addr.String()
	}
	return p.FullPath() + n.addr.String()
}

// Match compares the node path against the beginning of candidate and returns
// the matched portion. Directories match up to an optional following slash,
// fragments only match exactly and files match up to a '#' or the end.
func (n *Node) Match(candidate string) (string, bool) {
	path := n.addr.String()
	switch {
	case n.addr.IsFragment():
		if candidate == path {
			return path, true
		}
	case n.addr.IsDirectory():
		stem := strings.TrimSuffix(path, "/")
		if !strings.HasPrefix(candidate, stem) {
			return "", false
		}
		switch rest := candidate[len(stem):]; {
		case rest == "":
			return stem, true
		case rest[0] == '/':
			return stem + "/", true
		}
	default:
		if !strings.HasPrefix(candidate, path) {
			return "", false
		}
		if rest := candidate[len(path):]; rest == "" || rest[0] == '#' {
			return path, true
		}
	}
	return "", false
}

// ToURL returns the node URL below the placeholder base. The root's own path
// is stripped, so a node "site/docs/page" below root "site/" maps to
// webtree://webtree.localhost/docs/page.
func (n *Node) ToURL() *url.URL {
	if n.addr.IsAbsolute() {
		if u, err := url.Parse(n.addr.String()); err == nil {
			return u
		}
	}
	rel := strings.TrimPrefix(n.FullPath(), n.Root().Path())
	base := baseURL()
	ref, err := url.Parse(rel)
	if err != nil {
		base.Path = "/" + rel
		return base
	}
	if ref.IsAbs() {
		return ref
	}
	return base.ResolveReference(ref)
}

func baseURL() *url.URL {
	return &url.URL{Scheme: URLScheme, Host: URLHost, Path: "/"}
}

func isPlaceholder(u *url.URL) bool {
	return u.Scheme == URLScheme && u.Host == URLHost
}

// Resolve returns the node addressed by path, which is absolute or relative to
// n, or nil when no such node exists or the path leaves the output root.
func (n *Node) Resolve(path string) *Node {
	node, _ := n.Lookup(path)
	return node
}

// Lookup is Resolve with the reason for a failed lookup: ErrMalformedPath,
// ErrPathEscapesRoot or ErrNodeNotFound.
func (n *Node) Lookup(path string) (*Node, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, errors.PathError("malformed path").WithCause(err).WithContext("path", path).Build()
	}
	target, escapes := resolveReference(n.ToURL(), ref)
	if escapes {
		return nil, errors.PathError("path escapes output root").
			WithContext("path", path).
			WithContext("node", n.FullPath()).
			Build()
	}

	root := n.Root()
	if !isPlaceholder(target) {
		if found := findAbsolute(root, target.String()); found != nil {
			return found, nil
		}
		return nil, notFound(path, n)
	}

	remaining := strings.TrimPrefix(target.Path, "/")
	if target.Fragment != "" {
		remaining += "#" + target.Fragment
	}

	node := root
	for remaining != "" {
		next, matched := matchChild(node, remaining)
		if next == nil {
			return nil, notFound(path, n)
		}
		node = next
		remaining = remaining[len(matched):]
	}
	return node, nil
}

// matchChild returns the first child in children order matching a non-empty
// prefix of remaining.
func matchChild(node *Node, remaining string) (*Node, string) {
	for _, c := range node.Children() {
		if c.addr.IsAbsolute() {
			continue
		}
		if m, ok := c.Match(remaining); ok && m != "" {
			return c, m
		}
	}
	return nil, ""
}

func findAbsolute(n *Node, target string) *Node {
	for _, c := range n.Children() {
		if c.addr.IsAbsolute() {
			if u, err := url.Parse(c.addr.String()); err == nil && u.String() == target {
				return c
			}
		}
		if found := findAbsolute(c, target); found != nil {
			return found
		}
	}
	return nil
}

func notFound(path string, n *Node) error {
	return errors.NewError(errors.CategoryNotFound, "node not found").
		WithContext("path", path).
		WithContext("node", n.FullPath()).
		Build()
}

// resolveReference merges ref into base as RFC 3986 does, except that ".."
// segments climbing above the root are reported instead of being dropped.
// A network-path reference ("//host/path") takes the base scheme and is only
// local when its host is the placeholder host.
func resolveReference(base, ref *url.URL) (*url.URL, bool) {
	if ref.IsAbs() || ref.Host != "" {
		out := *ref
		if out.Scheme == "" {
			out.Scheme = base.Scheme
		}
		if isPlaceholder(&out) {
			p, escapes := removeDotSegments(out.Path)
			out.Path = p
			return &out, escapes
		}
		return &out, false
	}
	out := *base
	out.RawQuery = ref.RawQuery
	out.Fragment = ref.Fragment
	out.RawFragment = ""
	switch {
	case ref.Path == "":
		if ref.RawQuery == "" {
			out.RawQuery = base.RawQuery
		}
		return &out, false
	case strings.HasPrefix(ref.Path, "/"):
		out.Path = ref.Path
	default:
		dir := base.Path[:strings.LastIndex(base.Path, "/")+1]
		out.Path = dir + ref.Path
	}
	out.RawPath = ""
	p, escapes := removeDotSegments(out.Path)
	out.Path = p
	return &out, escapes
}

func removeDotSegments(p string) (string, bool) {
	if !strings.Contains(p, ".") {
		return p, false
	}
	segs := strings.Split(strings.TrimPrefix(p, "/"), "/")
	out := make([]string, 0, len(segs))
	for i, seg := range segs {
		last := i == len(segs)-1
		switch seg {
		case ".":
			if last {
				out = append(out, "")
			}
		case "..":
			if len(out) == 0 {
				return p, true
			}
			out = out[:len(out)-1]
			if last {
				out = append(out, "")
			}
		default:
			out = append(out, seg)
		}
	}
	return "/" + strings.Join(out, "/"), false
}
