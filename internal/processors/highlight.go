package processors

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	ferrors "git.home.luguber.info/inful/webtree/internal/foundation/errors"
	"git.home.luguber.info/inful/webtree/internal/page"
	"git.home.luguber.info/inful/webtree/internal/plugin"
)

// DefaultHighlightStyle is used when no chroma style is configured.
const DefaultHighlightStyle = "github"

// Highlight replaces fenced code blocks in rendered HTML with chroma output.
// Blocks in unknown languages are left as they are.
type Highlight struct {
	plugin.BasePlugin
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// NewHighlight returns the highlight processor using the named chroma style.
// Unknown style names fall back to chroma's default style.
func NewHighlight(style string) *Highlight {
	if style == "" {
		style = DefaultHighlightStyle
	}
	return &Highlight{
		style:     styles.Get(style),
		formatter: chromahtml.New(chromahtml.WithClasses(false)),
	}
}

func (h *Highlight) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:         "highlight",
		Version:      version,
		Type:         plugin.PluginTypeProcessor,
		Description:  "Syntax highlighting for code blocks",
		Capabilities: []string{plugin.ProcessesCapability("highlight")},
	}
}

// Process highlights every <pre><code class="language-x"> block of content.
// Content without a highlightable block is returned unchanged.
func (h *Highlight) Process(_ *page.Context, content string) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryRender, "failed to parse HTML for highlighting").Build()
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}
	if !h.highlightBlocks(body) {
		return content, nil
	}

	var buf strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", ferrors.WrapError(err, ferrors.CategoryRender, "failed to render highlighted HTML").Build()
		}
	}
	return buf.String(), nil
}

// highlightBlocks replaces the code blocks below parent with chroma output
// and reports whether any block was replaced.
func (h *Highlight) highlightBlocks(parent *html.Node) bool {
	replaced := false
	for c := parent.FirstChild; c != nil; {
		next := c.NextSibling
		lang, code, ok := fencedCode(c)
		switch {
		case !ok:
			if h.highlightBlocks(c) {
				replaced = true
			}
		default:
			out, ok := h.highlight(lang, code)
			if !ok {
				break
			}
			repl, err := html.ParseFragment(strings.NewReader(out), parent)
			if err != nil {
				break
			}
			for _, r := range repl {
				parent.InsertBefore(r, c)
			}
			parent.RemoveChild(c)
			replaced = true
		}
		c = next
	}
	return replaced
}

// fencedCode matches a <pre> holding exactly one <code class="language-x">
// with text only, the shape goldmark renders fenced code blocks in.
func fencedCode(n *html.Node) (lang, code string, ok bool) {
	if n.Type != html.ElementNode || n.DataAtom != atom.Pre {
		return "", "", false
	}
	c := n.FirstChild
	if c == nil || c != n.LastChild || c.Type != html.ElementNode || c.DataAtom != atom.Code {
		return "", "", false
	}
	for _, a := range c.Attr {
		if a.Key != "class" {
			continue
		}
		for _, cls := range strings.Fields(a.Val) {
			if l, found := strings.CutPrefix(cls, "language-"); found && l != "" {
				lang = l
			}
		}
	}
	if lang == "" {
		return "", "", false
	}
	var b strings.Builder
	for t := c.FirstChild; t != nil; t = t.NextSibling {
		if t.Type != html.TextNode {
			return "", "", false
		}
		b.WriteString(t.Data)
	}
	return lang, b.String(), true
}

func (h *Highlight) highlight(lang, code string) (string, bool) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		return "", false
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return "", false
	}
	var buf strings.Builder
	if err := h.formatter.Format(&buf, h.style, it); err != nil {
		return "", false
	}
	return buf.String(), true
}
