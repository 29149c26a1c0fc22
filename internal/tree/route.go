package tree

import (
	"net/url"
	"regexp"
	"strings"
)

// RouteTo returns the relative URL from n to other. When both refer to the
// same location the route is empty and other's own path is returned instead.
func (n *Node) RouteTo(other *Node) string {
	if route := relativeRoute(n.ToURL(), other.ToURL()); route != "" {
		return route
	}
	return other.Path()
}

// RouteToPath returns the relative URL from n to path, which is interpreted
// relative to n. An empty route yields path itself.
func (n *Node) RouteToPath(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return path
	}
	base := n.ToURL()
	if route := relativeRoute(base, base.ResolveReference(ref)); route != "" {
		return route
	}
	return path
}

func relativeRoute(from, to *url.URL) string {
	if from.Scheme != to.Scheme || !strings.EqualFold(from.Host, to.Host) || from.User.String() != to.User.String() {
		return to.String()
	}
	rel := &url.URL{RawQuery: to.RawQuery, Fragment: to.Fragment}
	if from.Path == to.Path {
		if from.RawQuery == to.RawQuery {
			rel.RawQuery = ""
		}
		return rel.String()
	}
	rel.Path = routePath(from.Path, to.Path)
	if rel.Path == "./" && to.RawQuery != "" {
		rel.Path = ""
	}
	return rel.String()
}

var abnormalPath = regexp.MustCompile(`(?:^|/)\.\.?(?:/|$)`)

// routePath computes the relative path from the directory of src to dst.
func routePath(src, dst string) string {
	if src == dst {
		return ""
	}
	if abnormalPath.MatchString(dst) {
		return dst
	}
	srcDirs, _ := splitKeepSlash(src)
	dstDirs, tail := splitKeepSlash(dst)
	dstPath := append(dstDirs, tail)

	for len(dstPath) > 0 && len(srcDirs) > 0 && dstPath[0] == srcDirs[0] {
		srcDirs = srcDirs[1:]
		dstPath = dstPath[1:]
	}
	tmp := strings.Join(dstPath, "")
	if len(srcDirs) == 0 {
		switch {
		case tmp == "":
			return "./"
		case strings.Contains(dstPath[0], ":"):
			return "./" + tmp
		default:
			return tmp
		}
	}
	return strings.Repeat("../", len(srcDirs)) + tmp
}

// splitKeepSlash splits "/a/b/c" into ["/", "a/", "b/"] and "c".
func splitKeepSlash(p string) ([]string, string) {
	var dirs []string
	for {
		i := strings.IndexByte(p, '/')
		if i < 0 {
			return dirs, p
		}
		dirs = append(dirs, p[:i+1])
		p = p[i+1:]
	}
}
