package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/webtree/internal/change"
	"git.home.luguber.info/inful/webtree/internal/markdown"
	"git.home.luguber.info/inful/webtree/internal/page"
	"git.home.luguber.info/inful/webtree/internal/plugin"
	"git.home.luguber.info/inful/webtree/internal/processors"
	"git.home.luguber.info/inful/webtree/internal/render"
	"git.home.luguber.info/inful/webtree/internal/state"
	"git.home.luguber.info/inful/webtree/internal/templates"
	"git.home.luguber.info/inful/webtree/internal/tree"
)

type env struct {
	root      *tree.Node
	pages     *PageHandler
	templates *TemplateHandler
	static    *StaticHandler
	tracker   *change.SourceTracker
}

func newEnv(t *testing.T) env {
	t.Helper()
	tr := tree.New()
	root, err := tr.NewRoot("/")
	require.NoError(t, err)
	root.Info.Handler = DirectoryHandler{}

	reg := plugin.NewRegistry()
	require.NoError(t, processors.Register(reg, processors.Options{}))
	resolver := templates.NewResolver(nil, nil)
	tracker := change.NewSourceTracker(state.NewMemoryStore(), resolver)
	oracle := &change.Oracle{Sources: tracker, Templates: resolver}

	deps := Deps{
		Renderer: render.NewPipeline(resolver, reg),
		Changes:  oracle,
		Markdown: markdown.New(markdown.Options{}),
		Lang:     "en",
	}
	return env{
		root:      root,
		pages:     NewPageHandler(deps),
		templates: NewTemplateHandler(deps),
		static:    NewStaticHandler(oracle),
		tracker:   tracker,
	}
}

func TestPageHandler_CreateNode(t *testing.T) {
	e := newEnv(t)
	n, err := e.pages.CreateNode(e.root, "docs/guide.page", []byte("---\ntitle: Guide\nlang: EN-us\n---\n# Intro\n\nText\n\n## Usage Notes\n"), map[string]any{"orderInfo": 3})
	require.NoError(t, err)

	assert.Equal(t, "/guide.html", n.FullPath())
	assert.Equal(t, "Guide", n.Title())
	assert.Equal(t, "en-US", n.Meta.String("lang"))
	assert.Equal(t, 3, n.OrderInfo())
	assert.Equal(t, "docs/guide.page", n.Info.Source)
	assert.NotEmpty(t, n.Info.Fingerprint)
	assert.Same(t, e.pages, n.Info.Handler)
	assert.True(t, n.Page().HasBlock("content"))

	frags := n.Children()
	require.Len(t, frags, 2)
	assert.Equal(t, "#intro", frags[0].Path())
	assert.Equal(t, "Intro", frags[0].Title())
	assert.Equal(t, 1, frags[0].OrderInfo())
	assert.Equal(t, "#usage-notes", frags[1].Path())
	assert.Equal(t, "Usage Notes", frags[1].Title())
	assert.Same(t, frags[0], e.root.Resolve("guide.html#intro"))
}

func TestPageHandler_DefaultLang(t *testing.T) {
	e := newEnv(t)
	n, err := e.pages.CreateNode(e.root, "a.page", []byte("body\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "en", n.Meta.String("lang"))

	n, err = e.pages.CreateNode(e.root, "b.page", []byte("---\nlang: not a tag!\n---\nbody\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "en", n.Meta.String("lang"), "invalid lang falls back to the default")
}

func TestPageHandler_NoFragmentsForNonMarkdown(t *testing.T) {
	e := newEnv(t)
	n, err := e.pages.CreateNode(e.root, "raw.page", []byte("--- name:content format:html\n<h1 id=\"x\">X</h1>\n"), nil)
	require.NoError(t, err)
	assert.Empty(t, n.Children())
}

func TestPageHandler_NodeExists(t *testing.T) {
	e := newEnv(t)
	_, err := e.pages.CreateNode(e.root, "index.page", []byte("one\n"), nil)
	require.NoError(t, err)
	_, err = e.pages.CreateNode(e.root, "other/index.page", []byte("two\n"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNodeExists))
}

func TestPageHandler_InvalidPage(t *testing.T) {
	e := newEnv(t)
	_, err := e.pages.CreateNode(e.root, "bad.page", []byte("--- name:a bogus:1\nx\n"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, page.ErrInvalidPage))
	assert.Nil(t, e.root.Child("bad.html"))
}

func TestPageHandler_CreateFromData(t *testing.T) {
	e := newEnv(t)
	n, err := e.pages.CreateFromData(e.root, "feed.xml", []byte("--- format:html\n<feed/>\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "/feed.xml", n.FullPath())
	assert.Empty(t, n.Info.Source)

	out, err := n.WriteInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<feed/>\n", string(out.Data))
}

func TestPageHandler_WriteInfoUsesTemplates(t *testing.T) {
	e := newEnv(t)
	_, err := e.templates.CreateNode(e.root, "default.template", []byte("<html lang=\"{{lang}}\"><title>{{title}}</title>{{render}}</html>\n"), nil)
	require.NoError(t, err)
	n, err := e.pages.CreateNode(e.root, "index.page", []byte("---\ntitle: Home\n---\n# Hi\n"), nil)
	require.NoError(t, err)

	out, err := n.WriteInfo(context.Background())
	require.NoError(t, err)
	got := string(out.Data)
	assert.Contains(t, got, `<html lang="en"><title>Home</title>`)
	assert.Contains(t, got, `<h1 id="hi">Hi</h1>`)

	body, err := n.RenderBlock(context.Background(), "content", false)
	require.NoError(t, err)
	assert.NotContains(t, body, "<html")
}

func TestPageHandler_WriteInfoFailure(t *testing.T) {
	e := newEnv(t)
	n, err := e.pages.CreateNode(e.root, "index.page", []byte("--- name:other\nx\n"), nil)
	require.NoError(t, err)

	_, err = n.WriteInfo(context.Background())
	require.Error(t, err)
}

func TestTemplateHandler(t *testing.T) {
	e := newEnv(t)
	assert.True(t, e.templates.Accepts("default.template"))
	assert.False(t, e.templates.Accepts("index.page"))

	n, err := e.templates.CreateNode(e.root, "layouts/default.template", []byte("[{{render}}]\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, "default.template", n.Path())
	assert.Equal(t, []string{"template"}, n.Page().Blocks()[0].Format)

	_, err = n.WriteInfo(context.Background())
	assert.True(t, errors.Is(err, tree.ErrUnsupportedOperation))
}

func TestStaticHandler(t *testing.T) {
	e := newEnv(t)
	n, err := e.static.CreateNode(e.root, "img/logo.png", []byte{0x89, 'P', 'N', 'G'}, map[string]any{"title": "Logo"})
	require.NoError(t, err)
	assert.Equal(t, "/logo.png", n.FullPath())
	assert.Equal(t, "Logo", n.Title())
	assert.Equal(t, change.StaticFingerprint([]byte{0x89, 'P', 'N', 'G'}), n.Info.Fingerprint)

	out, err := n.WriteInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "img/logo.png", out.CopyFrom)
	assert.Nil(t, out.Data)

	_, err = n.RenderBlock(context.Background(), "content", true)
	assert.True(t, errors.Is(err, tree.ErrUnsupportedOperation))

	_, err = e.static.CreateNode(e.root, "other/logo.png", nil, nil)
	assert.True(t, errors.Is(err, ErrNodeExists))
}

func TestDirectoryHandler(t *testing.T) {
	e := newEnv(t)
	var h DirectoryHandler
	d, err := h.CreateDirectory(e.root, "docs", map[string]any{"orderInfo": 2})
	require.NoError(t, err)
	assert.Equal(t, "/docs/", d.FullPath())

	again, err := h.CreateDirectory(e.root, "docs", map[string]any{"title": "Docs"})
	require.NoError(t, err)
	assert.Same(t, d, again)
	assert.Equal(t, 2, d.OrderInfo())
	assert.Equal(t, "Docs", d.Title())

	changed, err := d.Changed()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestChangePredicates(t *testing.T) {
	e := newEnv(t)
	tmpl, err := e.templates.CreateNode(e.root, "default.template", []byte("{{render}}\n"), nil)
	require.NoError(t, err)
	pg, err := e.pages.CreateNode(e.root, "index.page", []byte("hello\n"), nil)
	require.NoError(t, err)
	img, err := e.static.CreateNode(e.root, "logo.png", []byte("png"), nil)
	require.NoError(t, err)

	for _, n := range []*tree.Node{tmpl, pg, img} {
		c, err := n.Changed()
		require.NoError(t, err)
		assert.True(t, c, n.FullPath())
		e.tracker.Commit(n)
	}
	require.NoError(t, e.tracker.Flush(context.Background()))

	for _, n := range []*tree.Node{tmpl, pg, img} {
		c, err := n.Changed()
		require.NoError(t, err)
		assert.False(t, c, n.FullPath())
	}

	tmpl.Info.Fingerprint = "edited"
	c, _ := pg.Changed()
	assert.True(t, c, "template change marks the page stale")
	c, _ = img.Changed()
	assert.False(t, c, "static files ignore templates")
}

func TestCanonicalLang(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{"en", "en", false},
		{"EN-us", "en-US", false},
		{"de-ch", "de-CH", false},
		{"not a tag!", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CanonicalLang(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "index.html", OutputName("index.page"))
	assert.Equal(t, "guide.html", OutputName("docs/guide.page"))
	assert.Equal(t, "a.b.html", OutputName("a.b.page"))
}
