package linkcheck

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/webtree/internal/events"
	"git.home.luguber.info/inful/webtree/internal/plugin"
	"git.home.luguber.info/inful/webtree/internal/tree"
)

func TestExtractLinks(t *testing.T) {
	links, err := ExtractLinks(strings.NewReader(`<p><a href="a.html">A <b>link</b></a>
<img src="logo.png" alt="Logo"><a name="anchor-only">x</a>
<link rel="stylesheet" href="style.css"><script src="app.js"></script></p>`))
	require.NoError(t, err)
	require.Len(t, links, 4)
	assert.Equal(t, Link{URL: "a.html", Text: "A link", Tag: "a", Attribute: "href"}, links[0])
	assert.Equal(t, Link{URL: "logo.png", Text: "Logo", Tag: "img", Attribute: "src"}, links[1])
	assert.Equal(t, "style.css", links[2].URL)
	assert.Equal(t, "script", links[3].Tag)
}

func TestIsInternal(t *testing.T) {
	tests := map[string]bool{
		"page.html":              true,
		"../index.html":          true,
		"/docs/":                 true,
		"#intro":                 true,
		"https://example.com/":   false,
		"//cdn.example.com/x":    false,
		"mailto:dev@example.com": false,
		"javascript:void(0)":     false,
		"":                       false,
	}
	for link, want := range tests {
		assert.Equal(t, want, IsInternal(link), link)
	}
}

func TestChecker_HandleEvent(t *testing.T) {
	tr := tree.New()
	root, err := tr.NewRoot("/")
	require.NoError(t, err)
	_, err = tr.NewNode(root, "index.html")
	require.NoError(t, err)
	docs, err := tr.NewNode(root, "docs/")
	require.NoError(t, err)
	pg, err := tr.NewNode(docs, "page.html")
	require.NoError(t, err)
	_, err = tr.NewNode(pg, "#intro")
	require.NoError(t, err)

	c := New()
	require.NoError(t, c.Init(plugin.NewPluginContext(context.Background(), nil, "out", "b1")))
	assert.Equal(t, plugin.PluginTypeListener, c.Metadata().Type)
	assert.Equal(t, []string{events.EventAfterNodeRendered}, c.Events())

	out := `<a href="../index.html">home</a>
<a href="#intro">intro</a>
<a href="page.html#intro">self</a>
<a href="missing.html">missing</a>
<a href="https://example.com/">ext</a>
<a href="mailto:x@example.com">mail</a>
<a href="../../up.html">escape</a>
<img src="img.png">`
	err = c.HandleEvent(context.Background(), events.NodeRendered{BuildID: "b1", Node: pg, Block: "content", Output: out})
	require.NoError(t, err)

	broken := c.Broken()
	require.Len(t, broken, 3)
	assert.Equal(t, "/docs/page.html", broken[0].Node)
	assert.Equal(t, "missing.html", broken[0].Link.URL)
	assert.True(t, errors.Is(broken[0].Err, tree.ErrNodeNotFound))
	assert.Equal(t, "../../up.html", broken[1].Link.URL)
	assert.True(t, errors.Is(broken[1].Err, tree.ErrPathEscapesRoot))
	assert.Equal(t, "img.png", broken[2].Link.URL)

	require.NoError(t, c.Init(nil))
	assert.Empty(t, c.Broken())
}

func TestChecker_IgnoresOtherEvents(t *testing.T) {
	c := New()
	require.NoError(t, c.HandleEvent(context.Background(), events.BuildStarted{BuildID: "b1"}))
	assert.Empty(t, c.Broken())
}
