package build

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/webtree/internal/change"
	"git.home.luguber.info/inful/webtree/internal/events"
	"git.home.luguber.info/inful/webtree/internal/handlers"
	"git.home.luguber.info/inful/webtree/internal/markdown"
	"git.home.luguber.info/inful/webtree/internal/plugin"
	"git.home.luguber.info/inful/webtree/internal/processors"
	"git.home.luguber.info/inful/webtree/internal/render"
	"git.home.luguber.info/inful/webtree/internal/source"
	"git.home.luguber.info/inful/webtree/internal/templates"
	"git.home.luguber.info/inful/webtree/internal/tree"
)

// Site is a loaded output tree together with the collaborators that render
// it.
type Site struct {
	BuildID   string
	Tree      *tree.Tree
	Root      *tree.Node
	Registry  *plugin.Registry
	Bus       *events.Bus
	Resolver  *templates.Resolver
	Pipeline  *render.Pipeline
	Tracker   *change.SourceTracker
	Oracle    *change.Oracle
	LoadStats source.Stats
}

// Load builds the output tree from the source without rendering anything.
// Fingerprints of the previous build are loaded, so Node.Changed answers for
// the returned tree.
func (b *Builder) Load(ctx context.Context, buildID string) (*Site, error) {
	cfg := b.cfg
	logger := b.logger

	reg := plugin.NewRegistry()
	mdOpts := markdown.Options{Unsafe: cfg.Markdown.Unsafe, HardWraps: cfg.Markdown.HardWraps}
	if err := processors.Register(reg, processors.Options{Markdown: mdOpts, HighlightStyle: cfg.HighlightStyle}); err != nil {
		return nil, err
	}
	for _, p := range b.plugins {
		if err := reg.Register(p); err != nil {
			return nil, err
		}
	}

	bus := events.NewBus(events.WithStore(b.store), events.WithLogger(logger))
	resolver := templates.NewResolver(templates.DirectoryLookup{Name: cfg.TemplateName}, logger)
	pipeline := render.NewPipeline(resolver, reg,
		render.WithDispatcher(bus),
		render.WithLogger(logger),
		render.WithRecorder(b.recorder),
		render.WithBuildID(buildID))

	tracker := change.NewSourceTracker(b.store, resolver)
	if !b.force {
		if err := tracker.Load(ctx); err != nil {
			return nil, err
		}
	}
	oracle := &change.Oracle{Sources: tracker, Templates: resolver}

	deps := handlers.Deps{
		Renderer:      pipeline,
		Changes:       oracle,
		Markdown:      markdown.New(mdOpts),
		Lang:          cfg.Lang,
		DefaultFormat: cfg.DefaultFormat,
		Logger:        logger,
	}
	loader := source.NewLoader(b.fsys, handlers.DirectoryHandler{}, []source.FileHandler{
		handlers.NewPageHandler(deps),
		handlers.NewTemplateHandler(deps),
		handlers.NewStaticHandler(oracle),
	}, logger)
	for _, ex := range b.excludes {
		loader.Exclude(ex)
	}

	t := tree.New()
	root, stats, err := loader.Load(t)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded source tree",
		slog.Int("files", stats.Files),
		slog.Int("directories", stats.Directories),
		slog.Int("skipped", stats.Skipped))

	return &Site{
		BuildID:   buildID,
		Tree:      t,
		Root:      root,
		Registry:  reg,
		Bus:       bus,
		Resolver:  resolver,
		Pipeline:  pipeline,
		Tracker:   tracker,
		Oracle:    oracle,
		LoadStats: stats,
	}, nil
}

// Listener is a plugin that subscribes to build events.
type Listener interface {
	Events() []string
	HandleEvent(ctx context.Context, e events.Event) error
}

// subscribeListeners subscribes every listener plugin of the registry.
func (s *Site) subscribeListeners() int {
	n := 0
	for _, p := range s.Registry.ListByType(plugin.PluginTypeListener) {
		l, ok := p.(Listener)
		if !ok {
			continue
		}
		for _, name := range l.Events() {
			s.Bus.Subscribe(name, l.HandleEvent)
			n++
		}
	}
	return n
}

// writable returns the nodes that produce output, in pre-order.
func (s *Site) writable() []*tree.Node {
	var out []*tree.Node
	_ = s.Tree.Walk(func(n *tree.Node) error {
		if n.IsFragment() {
			return nil
		}
		if _, ok := n.Info.Handler.(tree.Writer); ok {
			out = append(out, n)
		}
		return nil
	})
	return out
}
