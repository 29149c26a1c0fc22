// Package markdown wraps goldmark for converting Markdown blocks to HTML and
// for extracting the headings that become fragment nodes.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Options controls how Markdown is converted.
type Options struct {
	// Unsafe keeps raw HTML and potentially dangerous links in the output.
	Unsafe bool
	// HardWraps renders soft line breaks as <br>.
	HardWraps bool
}

// New returns a goldmark instance with GFM, definition lists and automatic
// heading IDs. The instance is safe for concurrent use.
func New(opts Options) goldmark.Markdown {
	var rendererOpts []renderer.Option
	if opts.Unsafe {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}
	if opts.HardWraps {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.DefinitionList,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOpts...),
	)
}

// Convert renders body to HTML.
func Convert(md goldmark.Markdown, body []byte) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert(body, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Heading is a heading of a Markdown document.
type Heading struct {
	ID    string
	Text  string
	Level int
}

// Headings returns the headings of body in document order with the IDs the
// HTML renderer assigns to them.
func Headings(md goldmark.Markdown, body []byte) []Heading {
	root := md.Parser().Parse(text.NewReader(body))

	var headings []Heading
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		heading := Heading{Level: h.Level, Text: plainText(h, body)}
		if v, ok := h.AttributeString("id"); ok {
			if id, ok := v.([]byte); ok {
				heading.ID = string(id)
			}
		}
		if heading.ID != "" {
			headings = append(headings, heading)
		}
		return gmast.WalkSkipChildren, nil
	})
	return headings
}

func plainText(n gmast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *gmast.String:
			buf.Write(t.Value)
		}
		return gmast.WalkContinue, nil
	})
	return buf.String()
}
