// Package tree implements the output tree: an arena of nodes addressed by
// path segments relative to their parent.
//
// A Tree owns every node. Nodes refer to their parent and children by NodeID,
// never by owning pointers, and a node's lifetime is its membership in the
// tree. Construction (NewNode, SetParent, Remove) is single-writer; once a
// tree is frozen the read operations (Resolve, Match, ToURL, RouteTo, ...)
// may be used concurrently.
//
// Paths follow pathaddr: "dir/" is a directory, "#frag" a fragment, an
// absolute URL is used verbatim, everything else is a file. Compound paths
// like "dir/file#frag" are allowed, but a node "dir/file" must not share a
// parent with a node "dir/"; create "file" below "dir/" instead.
package tree
