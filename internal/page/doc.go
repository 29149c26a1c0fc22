// Package page parses page files into meta information and named blocks, and
// renders a block through its processor pipeline.
//
// A page file starts with an optional YAML meta header delimited by "---"
// lines. The remainder is split into blocks. A block starts with a separator
// line of the form
//
//	--- name:sidebar format:template,markdown
//
// The first block may omit the separator and is then named "content" and uses
// the default format.
package page
