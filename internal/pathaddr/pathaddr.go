// Package pathaddr classifies node path strings.
//
// A path is one of four kinds: a directory ("dir/"), a fragment ("#anchor"),
// an absolute URL ("http://host/x") or a file (anything else). Compound
// relative forms such as "dir/file#frag" are valid and classify by their
// overall shape.
package pathaddr

import (
	"net/url"
	"strings"

	"git.home.luguber.info/inful/webtree/internal/foundation/errors"
)

// Kind is the classification of a path string.
type Kind int

const (
	File Kind = iota
	Directory
	Fragment
	Absolute
)

func (k Kind) String() string {
	switch k {
	case Directory:
		return "directory"
	case Fragment:
		return "fragment"
	case Absolute:
		return "absolute"
	default:
		return "file"
	}
}

// ErrMalformedPath is returned for empty or unparseable path strings, and for
// relative paths carrying a query or an authority.
var ErrMalformedPath = errors.PathError("malformed path").Build()

// Address is an immutable, classified path string.
type Address struct {
	raw  string
	kind Kind
}

// Parse classifies s. Absolute wins over the other kinds, so "http://host/"
// is Absolute and not Directory.
func Parse(s string) (Address, error) {
	if s == "" {
		return Address{}, malformed(s, "empty")
	}
	u, err := url.Parse(s)
	if err != nil {
		return Address{}, errors.PathError("malformed path").
			WithCause(err).
			WithContext("path", s).
			Build()
	}
	kind := classify(s, u)
	if kind != Absolute {
		// Relative paths are matched segment by segment; a query or an
		// authority would be split off by URL resolution and never match.
		switch {
		case u.RawQuery != "" || u.ForceQuery:
			return Address{}, malformed(s, "query in relative path")
		case u.Host != "" || strings.HasPrefix(s, "//"):
			return Address{}, malformed(s, "authority in relative path")
		}
	}
	return Address{raw: s, kind: kind}, nil
}

func malformed(s, reason string) error {
	return errors.PathError("malformed path").
		WithContext("path", s).
		WithContext("reason", reason).
		Build()
}

// Classify returns the kind of s without validating it. Unparseable strings
// are classified by their shape alone.
func Classify(s string) Kind {
	u, err := url.Parse(s)
	if err != nil {
		u = nil
	}
	return classify(s, u)
}

func classify(s string, u *url.URL) Kind {
	switch {
	case u != nil && u.IsAbs():
		return Absolute
	case strings.HasPrefix(s, "#"):
		return Fragment
	case strings.HasSuffix(s, "/"):
		return Directory
	default:
		return File
	}
}

// String returns the raw path.
func (a Address) String() string { return a.raw }

// Kind returns the classification.
func (a Address) Kind() Kind { return a.kind }

// IsDirectory reports a trailing slash. An absolute URL ending in a slash is
// a directory as well.
func (a Address) IsDirectory() bool {
	return a.kind == Directory || (a.kind == Absolute && strings.HasSuffix(a.raw, "/"))
}

func (a Address) IsFragment() bool { return a.kind == Fragment }
func (a Address) IsAbsolute() bool { return a.kind == Absolute }

// IsFile reports whether the address is neither a directory nor a fragment.
func (a Address) IsFile() bool {
	return !a.IsDirectory() && !a.IsFragment()
}

// IsCompound reports whether a relative path spans more than one segment,
// e.g. "dir/file" or "a/b/".
func (a Address) IsCompound() bool {
	if a.kind == Absolute || a.kind == Fragment {
		return false
	}
	return strings.Contains(strings.TrimSuffix(a.raw, "/"), "/")
}

// FirstSegment returns the leading directory segment of a compound path
// including its slash ("dir/" for "dir/file#x"), or "" for single-segment
// paths.
func (a Address) FirstSegment() string {
	if !a.IsCompound() {
		return ""
	}
	i := strings.Index(a.raw, "/")
	return a.raw[:i+1]
}

// Stem returns the path without a trailing fragment ("dir/file" for
// "dir/file#x").
func (a Address) Stem() string {
	if a.kind == Fragment {
		return ""
	}
	if i := strings.Index(a.raw, "#"); i >= 0 {
		return a.raw[:i]
	}
	return a.raw
}
