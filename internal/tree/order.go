package tree

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// OrderInfo returns the numeric orderInfo meta value, 0 when it is missing or
// not numeric. Strings contribute their leading integer ("3rd" is 3).
func (n *Node) OrderInfo() int {
	switch v := n.Meta["orderInfo"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int(v)
	case string:
		return leadingInt(v)
	default:
		return 0
	}
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	i, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return i
}

// Compare orders nodes by orderInfo, then by title.
func (n *Node) Compare(other *Node) int {
	a, b := n.OrderInfo(), other.OrderInfo()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return strings.Compare(n.Title(), other.Title())
}

// SortNodes sorts nodes by Compare. Equal nodes keep their relative order.
func SortNodes(nodes []*Node) {
	slices.SortStableFunc(nodes, (*Node).Compare)
}

// SortedChildren returns the children ordered for listing.
func (n *Node) SortedChildren() []*Node {
	children := n.Children()
	SortNodes(children)
	return children
}

// InSubtreeOf reports whether n is ancestor itself or lies below it. Only parent links
// are used, never paths.
func (n *Node) InSubtreeOf(ancestor *Node) bool {
	for node := n; node != nil; node = node.Parent() {
		if node == ancestor {
			return true
		}
	}
	return false
}
