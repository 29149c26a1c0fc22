package render

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/webtree/internal/events"
	"git.home.luguber.info/inful/webtree/internal/metrics"
	"git.home.luguber.info/inful/webtree/internal/page"
	"git.home.luguber.info/inful/webtree/internal/plugin"
	"git.home.luguber.info/inful/webtree/internal/processors"
	"git.home.luguber.info/inful/webtree/internal/templates"
	"git.home.luguber.info/inful/webtree/internal/tree"
)

type panicProcessor struct{ plugin.BasePlugin }

func (panicProcessor) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{Name: "explode", Version: "v1", Type: plugin.PluginTypeProcessor}
}

func (panicProcessor) Process(*page.Context, string) (string, error) { panic("kaboom") }

type countingRecorder struct {
	metrics.NoopRecorder
	mu      sync.Mutex
	results map[metrics.ResultLabel]int
}

func (c *countingRecorder) IncRenderResult(_ string, r metrics.ResultLabel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[r]++
}

type fixture struct {
	root, docs, page *tree.Node
	pipeline         *Pipeline
	rendered         []events.NodeRendered
	logs             *bytes.Buffer
	recorder         *countingRecorder
	registry         *plugin.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{logs: &bytes.Buffer{}, recorder: &countingRecorder{results: map[metrics.ResultLabel]int{}}}
	tr := tree.New()
	var err error
	f.root, err = tr.NewRoot("site/")
	require.NoError(t, err)
	f.docs, err = tr.NewNode(f.root, "docs/")
	require.NoError(t, err)
	f.docs.Meta["orderInfo"] = 1
	f.page, err = tr.NewNode(f.docs, "page")
	require.NoError(t, err)
	f.page.Meta["title"] = "Page"
	f.page.Info.Page, err = page.New(nil, &page.Block{Name: "content", Format: []string{"markdown"}, Content: "Hello *world*\n"})
	require.NoError(t, err)

	f.registry = plugin.NewRegistry()
	require.NoError(t, processors.Register(f.registry, processors.Options{}))
	require.NoError(t, f.registry.Register(&panicProcessor{}))

	logger := slog.New(slog.NewTextHandler(f.logs, nil))
	bus := events.NewBus(events.WithLogger(logger))
	bus.Subscribe(events.EventAfterNodeRendered, func(_ context.Context, e events.Event) error {
		f.rendered = append(f.rendered, e.(events.NodeRendered))
		return nil
	})
	f.pipeline = NewPipeline(templates.NewResolver(nil, logger), f.registry,
		WithDispatcher(bus),
		WithLogger(logger),
		WithRecorder(f.recorder),
		WithBuildID("b1"))
	return f
}

func TestRenderBlock_EndToEnd(t *testing.T) {
	f := newFixture(t)

	res, ok := f.pipeline.RenderBlock(context.Background(), f.page, "content", true)
	require.True(t, ok)
	require.Equal(t, "<p>Hello <em>world</em></p>\n", res.Content)
	require.Same(t, f.page, res.Node)
	require.Equal(t, []*tree.Node{f.page}, res.Chain)
	require.Len(t, f.rendered, 1)
	require.Same(t, f.page, f.rendered[0].Node)
	require.Equal(t, "b1", f.rendered[0].BuildID)
	require.Equal(t, res.Content, f.rendered[0].Output)

	res, ok = f.pipeline.RenderBlock(context.Background(), f.page, "sidebar", true)
	require.False(t, ok)
	require.Empty(t, res.Content)
	require.Len(t, f.rendered, 1, "failed renders fire no event")
	require.Equal(t, 1, strings.Count(f.logs.String(), "block not found"))
	require.Contains(t, f.logs.String(), "node_path=site/docs/page")
	require.Contains(t, f.logs.String(), "block=sidebar")

	require.Equal(t, 1, f.recorder.results[metrics.ResultSuccess])
	require.Equal(t, 1, f.recorder.results[metrics.ResultBlockNotFound])
}

func TestRender_ErrorKinds(t *testing.T) {
	f := newFixture(t)

	_, err := f.pipeline.Render(context.Background(), f.page, "sidebar", false)
	require.ErrorIs(t, err, ErrBlockNotFound)

	b, _ := f.page.Page().Block("content")
	b.Format = []string{"nosuchformat"}
	_, err = f.pipeline.Render(context.Background(), f.page, "content", false)
	require.ErrorIs(t, err, ErrProcessorFailure)

	b.Format = []string{"explode"}
	_, err = f.pipeline.Render(context.Background(), f.page, "content", false)
	require.ErrorIs(t, err, ErrProcessorFailure)
	require.Contains(t, err.Error(), "kaboom")

	require.Equal(t, 2, f.recorder.results[metrics.ResultFailed])
}

func TestRender_NodeWithoutPage(t *testing.T) {
	f := newFixture(t)

	_, ok := f.pipeline.RenderBlock(context.Background(), f.docs, "content", true)
	require.False(t, ok)
}

func TestRender_DefaultBlockName(t *testing.T) {
	f := newFixture(t)

	res, err := f.pipeline.Render(context.Background(), f.page, "", true)
	require.NoError(t, err)
	require.Equal(t, "content", res.Block)
}

func TestRender_TemplateChain(t *testing.T) {
	f := newFixture(t)
	tmpl, err := f.page.Tree().NewNode(f.root, templates.DefaultTemplateName)
	require.NoError(t, err)
	tmpl.Info.Page, err = page.New(nil, &page.Block{
		Name:    "content",
		Format:  []string{"template"},
		Content: "<html><title>{{title}}</title>{{render}}</html>",
	})
	require.NoError(t, err)

	res, ok := f.pipeline.RenderBlock(context.Background(), f.page, "content", true)
	require.True(t, ok)
	require.Equal(t, "<html><title>Page</title><p>Hello <em>world</em></p>\n</html>", res.Content)
	require.Equal(t, []*tree.Node{tmpl, f.page}, res.Chain)

	res, ok = f.pipeline.RenderBlock(context.Background(), f.page, "content", false)
	require.True(t, ok)
	require.Equal(t, "<p>Hello <em>world</em></p>\n", res.Content)

	// The chain head decides which blocks exist.
	_, err = f.pipeline.Render(context.Background(), f.page, "sidebar", true)
	require.ErrorIs(t, err, ErrBlockNotFound)
}

func TestRender_ListenerFailureDoesNotFailRender(t *testing.T) {
	f := newFixture(t)
	bus := events.NewBus(events.WithLogger(slog.New(slog.DiscardHandler)))
	bus.Subscribe(events.EventAfterNodeRendered, func(context.Context, events.Event) error {
		panic("listener bug")
	})
	p := NewPipeline(templates.NewResolver(nil, nil), f.registry, WithDispatcher(bus))

	res, ok := p.RenderBlock(context.Background(), f.page, "content", true)
	require.True(t, ok)
	require.NotEmpty(t, res.Content)
}

func TestRender_Concurrent(t *testing.T) {
	f := newFixture(t)
	p := NewPipeline(templates.NewResolver(nil, nil), f.registry)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := p.RenderBlock(context.Background(), f.page, "content", true)
			require.True(t, ok)
		}()
	}
	wg.Wait()
}

func TestRender_Cancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := f.pipeline.Render(ctx, f.page, "content", true)
	require.Error(t, err)
}
