// Package render renders named blocks of nodes through their template chain.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/webtree/internal/events"
	ferrors "git.home.luguber.info/inful/webtree/internal/foundation/errors"
	"git.home.luguber.info/inful/webtree/internal/logfields"
	"git.home.luguber.info/inful/webtree/internal/metrics"
	"git.home.luguber.info/inful/webtree/internal/page"
	"git.home.luguber.info/inful/webtree/internal/tree"
)

var (
	ErrBlockNotFound    = page.ErrBlockNotFound
	ErrProcessorFailure = page.ErrProcessorFailure
)

// ChainResolver returns the template chain of a node, the node itself last.
type ChainResolver interface {
	Chain(n *tree.Node) []*tree.Node
}

// ProcessorSource returns a fresh format-to-processor snapshot per call.
type ProcessorSource interface {
	ProcessorsByCapability() map[string]page.Processor
}

// Dispatcher delivers events to listeners.
type Dispatcher interface {
	Dispatch(ctx context.Context, e events.Event) int
}

// Result is a rendered block.
type Result struct {
	Node    *tree.Node
	Block   string
	Content string
	// Chain is the template chain the block was rendered with.
	Chain []*tree.Node
}

// Pipeline renders blocks. It is safe for concurrent use once the tree is
// frozen.
type Pipeline struct {
	chains     ChainResolver
	processors ProcessorSource
	bus        Dispatcher
	logger     *slog.Logger
	recorder   metrics.Recorder
	buildID    string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithDispatcher(d Dispatcher) Option     { return func(p *Pipeline) { p.bus = d } }
func WithLogger(l *slog.Logger) Option       { return func(p *Pipeline) { p.logger = l } }
func WithRecorder(r metrics.Recorder) Option { return func(p *Pipeline) { p.recorder = r } }
func WithBuildID(id string) Option           { return func(p *Pipeline) { p.buildID = id } }

// NewPipeline returns a pipeline using chains for template chains and
// processors for the processor snapshot.
func NewPipeline(chains ChainResolver, processors ProcessorSource, opts ...Option) *Pipeline {
	p := &Pipeline{
		chains:     chains,
		processors: processors,
		logger:     slog.Default(),
		recorder:   metrics.NoopRecorder{},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// RenderBlock renders block of n. Failures are logged with the node's full
// path and the block name and reported as ok == false; they never propagate.
func (p *Pipeline) RenderBlock(ctx context.Context, n *tree.Node, block string, useTemplates bool) (Result, bool) {
	res, err := p.Render(ctx, n, block, useTemplates)
	if err != nil {
		p.logger.Error("Failed to render block",
			logfields.NodePath(n.FullPath()),
			logfields.Block(block),
			logfields.BuildID(p.buildID),
			logfields.Error(err))
		return Result{}, false
	}
	return res, true
}

// Render is RenderBlock for callers that handle the error themselves. The
// error matches ErrBlockNotFound or ErrProcessorFailure.
func (p *Pipeline) Render(ctx context.Context, n *tree.Node, block string, useTemplates bool) (res Result, err error) {
	if block == "" {
		block = page.DefaultBlockName
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = ferrors.RenderError("processor failure").
				WithCause(fmt.Errorf("panic: %v", r)).
				WithContext("node", n.FullPath()).
				WithContext("block", block).
				Build()
		}
		p.record(block, start, err)
	}()

	chain := []*tree.Node{n}
	if useTemplates {
		chain = p.chains.Chain(n)
	}
	head := chain[0]

	b, ok := head.Page().Block(block)
	if !ok {
		return Result{}, ferrors.RenderError("block not found").
			WithContext("block", block).
			WithContext("node", n.FullPath()).
			WithContext("chain_head", head.FullPath()).
			Build()
	}

	elements := make([]page.Element, len(chain))
	for i, c := range chain {
		elements[i] = c
	}
	p.logger.Debug("Rendering block",
		logfields.NodePath(n.FullPath()),
		logfields.Block(block),
		logfields.ChainLen(len(chain)))

	content, err := b.Render(ctx, elements, p.processors.ProcessorsByCapability())
	if err != nil {
		return Result{}, err
	}

	res = Result{Node: n, Block: block, Content: content, Chain: chain}
	if p.bus != nil {
		p.bus.Dispatch(ctx, events.NodeRendered{
			BuildID:  p.buildID,
			Node:     n,
			Block:    block,
			Output:   content,
			Duration: time.Since(start),
		})
	}
	return res, nil
}

func (p *Pipeline) record(block string, start time.Time, err error) {
	switch {
	case err == nil:
		p.recorder.ObserveRenderDuration(block, time.Since(start))
		p.recorder.IncRenderResult(block, metrics.ResultSuccess)
	case errors.Is(err, ErrBlockNotFound):
		p.recorder.IncRenderResult(block, metrics.ResultBlockNotFound)
	default:
		p.recorder.IncRenderResult(block, metrics.ResultFailed)
	}
}
