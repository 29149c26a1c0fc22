package page

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/webtree/internal/foundation/errors"
)

var (
	// ErrBlockNotFound is returned when a chain element lacks a requested block.
	ErrBlockNotFound = errors.RenderError("block not found").Build()
	// ErrProcessorFailure wraps any failure raised by a content processor,
	// including a processor missing from the registry snapshot.
	ErrProcessorFailure = errors.RenderError("processor failure").Build()
)

// Element is one entry of a template chain as seen by processors.
type Element interface {
	Page() *Page
	FullPath() string
	MetaValue(key string) (any, bool)
	// LinkFrom resolves path relative to the element and returns the route to
	// the result as seen from target. ok is false when path does not resolve.
	LinkFrom(target Element, path string) (route string, ok bool)
}

// Processor transforms block content. Implementations must not retain ctx.
type Processor interface {
	Process(ctx *Context, content string) (string, error)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx *Context, content string) (string, error)

func (f ProcessorFunc) Process(ctx *Context, content string) (string, error) {
	return f(ctx, content)
}

// Context is the state handed to processors while one block is rendered.
type Context struct {
	context.Context
	// Chain starts with the element owning Block and ends with the node being rendered.
	Chain      []Element
	Processors map[string]Processor
	Block      *Block
}

// Owner returns the element owning the block being processed.
func (c *Context) Owner() Element { return c.Chain[0] }

// Node returns the element the whole render was requested for.
func (c *Context) Node() Element { return c.Chain[len(c.Chain)-1] }

// RenderNext renders the block called name of the next chain element, with
// the remaining chain. It is how templates embed the content they wrap.
func (c *Context) RenderNext(name string) (string, error) {
	if len(c.Chain) < 2 {
		return "", errors.RenderError("block not found").
			WithContext("block", name).
			WithContext("reason", "no chain element after "+c.Owner().FullPath()).
			Build()
	}
	next := c.Chain[1:]
	b, ok := next[0].Page().Block(name)
	if !ok {
		return "", errors.RenderError("block not found").
			WithContext("block", name).
			WithContext("node", next[0].FullPath()).
			Build()
	}
	return b.Render(c.Context, next, c.Processors)
}

// Render runs the block content through its processor pipeline. chain[0] is
// the element owning the block.
func (b *Block) Render(ctx context.Context, chain []Element, processors map[string]Processor) (string, error) {
	if len(chain) == 0 {
		return "", errors.InternalError("empty render chain").WithContext("block", b.Name).Build()
	}
	pctx := &Context{Context: ctx, Chain: chain, Processors: processors, Block: b}
	content := b.Content
	for _, name := range b.Format {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p, ok := processors[name]
		if !ok {
			return "", errors.RenderError("processor failure").
				WithContext("processor", name).
				WithContext("reason", "no processor registered").
				WithContext("node", chain[0].FullPath()).
				Build()
		}
		out, err := p.Process(pctx, content)
		if err != nil {
			if errors.HasCategory(err, errors.CategoryRender) {
				return "", err
			}
			return "", errors.WrapError(err, errors.CategoryRender, "processor failure").
				WithContext("processor", name).
				WithContext("block", b.Name).
				WithContext("node", chain[0].FullPath()).
				Build()
		}
		content = out
	}
	return content, nil
}

func (b *Block) String() string {
	return fmt.Sprintf("block %q %v", b.Name, b.Format)
}
