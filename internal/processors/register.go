package processors

import (
	"git.home.luguber.info/inful/webtree/internal/markdown"
	"git.home.luguber.info/inful/webtree/internal/plugin"
)

const version = "v1.0.0"

// Options configures the built-in processors.
type Options struct {
	Markdown markdown.Options
	// HighlightStyle is a chroma style name.
	HighlightStyle string
}

// Register adds all built-in processors to reg.
func Register(reg *plugin.Registry, opts Options) error {
	for _, p := range []plugin.Plugin{
		NewMarkdown(opts.Markdown),
		NewTemplate(),
		NewHighlight(opts.HighlightStyle),
		NewHTML(),
	} {
		if err := reg.Register(p); err != nil {
			return err
		}
	}
	return nil
}
