package processors

import (
	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/webtree/internal/markdown"
	"git.home.luguber.info/inful/webtree/internal/page"
	"git.home.luguber.info/inful/webtree/internal/plugin"
)

// Markdown converts Markdown to HTML.
type Markdown struct {
	plugin.BasePlugin
	md goldmark.Markdown
}

// NewMarkdown returns the markdown processor.
func NewMarkdown(opts markdown.Options) *Markdown {
	return &Markdown{md: markdown.New(opts)}
}

func (m *Markdown) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        "markdown",
		Version:     version,
		Type:        plugin.PluginTypeProcessor,
		Description: "Converts Markdown (GFM) to HTML",
		Capabilities: []string{
			plugin.ProcessesCapability("markdown"),
			plugin.ProcessesCapability("md"),
		},
	}
}

func (m *Markdown) Process(_ *page.Context, content string) (string, error) {
	return markdown.Convert(m.md, []byte(content))
}
