package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortNodes_OrderInfoThenTitle(t *testing.T) {
	tr := New()
	root, err := tr.NewRoot("site/")
	require.NoError(t, err)

	orders := []int{3, 1, 1, 2}
	titles := []string{"a", "b", "c", "d"}
	var nodes []*Node
	for i := range orders {
		n, err := tr.NewNode(root, titles[i]+".html")
		require.NoError(t, err)
		n.Meta["orderInfo"] = orders[i]
		n.Meta["title"] = titles[i]
		nodes = append(nodes, n)
	}

	SortNodes(nodes)

	var got []string
	for _, n := range nodes {
		got = append(got, n.Title())
	}
	require.Equal(t, []string{"b", "c", "d", "a"}, got)

	var sorted []string
	for _, n := range root.SortedChildren() {
		sorted = append(sorted, n.Title())
	}
	require.Equal(t, got, sorted)
	// Children order itself is untouched.
	require.Equal(t, "a", root.Children()[0].Title())
}

func TestSortNodes_Stable(t *testing.T) {
	tr := New()
	root, _ := tr.NewRoot("site/")
	first, _ := tr.NewNode(root, "x.html")
	second, _ := tr.NewNode(root, "y.html")
	third, _ := tr.NewNode(root, "z.html")
	for _, n := range []*Node{first, second, third} {
		n.Meta["title"] = "same"
	}
	third.Meta["orderInfo"] = -1

	nodes := []*Node{first, second, third}
	SortNodes(nodes)
	require.Equal(t, []*Node{third, first, second}, nodes)
}

func TestOrderInfo(t *testing.T) {
	tr := New()
	root, _ := tr.NewRoot("site/")
	n, _ := tr.NewNode(root, "n.html")

	cases := []struct {
		value any
		want  int
	}{
		{nil, 0},
		{5, 5},
		{int64(7), 7},
		{uint64(8), 8},
		{2.9, 2},
		{"12", 12},
		{"3rd", 3},
		{"-4", -4},
		{"none", 0},
		{[]int{1}, 0},
	}
	for _, tc := range cases {
		if tc.value == nil {
			delete(n.Meta, "orderInfo")
		} else {
			n.Meta["orderInfo"] = tc.value
		}
		require.Equal(t, tc.want, n.OrderInfo(), "%#v", tc.value)
	}
}

func TestTitle(t *testing.T) {
	tr := New()
	root, _ := tr.NewRoot("site/")
	n, _ := tr.NewNode(root, "n.html")

	require.Empty(t, n.Title())
	n.Meta["title"] = 2024
	require.Equal(t, "2024", n.Title())
	n.Meta["title"] = "Home"
	require.Equal(t, "Home", n.Title())
}
