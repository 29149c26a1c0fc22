package page

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type testElement struct {
	path string
	page *Page
	meta map[string]any
}

func (e *testElement) Page() *Page      { return e.page }
func (e *testElement) FullPath() string { return e.path }

func (e *testElement) MetaValue(key string) (any, bool) {
	v, ok := e.meta[key]
	return v, ok
}

func (e *testElement) LinkFrom(_ Element, path string) (string, bool) { return path, true }

func mustPage(t *testing.T, blocks ...*Block) *Page {
	t.Helper()
	p, err := New(nil, blocks...)
	require.NoError(t, err)
	return p
}

func testProcessors() map[string]Processor {
	return map[string]Processor{
		"upper": ProcessorFunc(func(_ *Context, content string) (string, error) {
			return strings.ToUpper(content), nil
		}),
		"wrap": ProcessorFunc(func(ctx *Context, content string) (string, error) {
			inner, err := ctx.RenderNext("content")
			if err != nil {
				return "", err
			}
			return strings.Replace(content, "{{inner}}", inner, 1), nil
		}),
		"boom": ProcessorFunc(func(*Context, string) (string, error) {
			return "", errors.New("boom")
		}),
	}
}

func TestBlockRender_Pipeline(t *testing.T) {
	b := &Block{Name: "content", Format: []string{"upper"}, Content: "hello"}
	el := &testElement{path: "site/a.html", page: mustPage(t, b)}

	out, err := b.Render(context.Background(), []Element{el}, testProcessors())
	require.NoError(t, err)
	require.Equal(t, "HELLO", out)
}

func TestBlockRender_EmptyPipelineIsIdentity(t *testing.T) {
	b := &Block{Name: "content", Content: "raw"}
	el := &testElement{path: "site/a.html", page: mustPage(t, b)}

	out, err := b.Render(context.Background(), []Element{el}, nil)
	require.NoError(t, err)
	require.Equal(t, "raw", out)
}

func TestBlockRender_RenderNextFollowsChain(t *testing.T) {
	tmplBlock := &Block{Name: "content", Format: []string{"wrap"}, Content: "<main>{{inner}}</main>"}
	tmpl := &testElement{path: "site/default.template", page: mustPage(t, tmplBlock)}
	pageBlock := &Block{Name: "content", Format: []string{"upper"}, Content: "body"}
	node := &testElement{path: "site/a.html", page: mustPage(t, pageBlock)}

	var seen Element
	procs := testProcessors()
	procs["owner"] = ProcessorFunc(func(ctx *Context, content string) (string, error) {
		seen = ctx.Node()
		require.Same(t, tmpl, ctx.Owner())
		return content, nil
	})
	tmplBlock.Format = append(tmplBlock.Format, "owner")

	out, err := tmplBlock.Render(context.Background(), []Element{tmpl, node}, procs)
	require.NoError(t, err)
	require.Equal(t, "<main>BODY</main>", out)
	require.Same(t, node, seen)
}

func TestBlockRender_Errors(t *testing.T) {
	b := &Block{Name: "content", Format: []string{"missing"}, Content: "x"}
	el := &testElement{path: "site/a.html", page: mustPage(t, b)}

	_, err := b.Render(context.Background(), []Element{el}, testProcessors())
	require.ErrorIs(t, err, ErrProcessorFailure)

	b.Format = []string{"boom"}
	_, err = b.Render(context.Background(), []Element{el}, testProcessors())
	require.ErrorIs(t, err, ErrProcessorFailure)

	b.Format = []string{"wrap"}
	_, err = b.Render(context.Background(), []Element{el}, testProcessors())
	require.ErrorIs(t, err, ErrBlockNotFound)

	other := &testElement{path: "site/b.html", page: mustPage(t, &Block{Name: "sidebar"})}
	_, err = b.Render(context.Background(), []Element{el, other}, testProcessors())
	require.ErrorIs(t, err, ErrBlockNotFound)

	_, err = b.Render(context.Background(), nil, testProcessors())
	require.Error(t, err)
}

func TestBlockRender_Cancelled(t *testing.T) {
	b := &Block{Name: "content", Format: []string{"upper"}, Content: "x"}
	el := &testElement{path: "site/a.html", page: mustPage(t, b)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Render(ctx, []Element{el}, testProcessors())
	require.ErrorIs(t, err, context.Canceled)
}
