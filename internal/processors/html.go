package processors

import (
	"git.home.luguber.info/inful/webtree/internal/page"
	"git.home.luguber.info/inful/webtree/internal/plugin"
)

// HTML passes content through unchanged. It exists so pages can declare
// blocks that already contain HTML.
type HTML struct {
	plugin.BasePlugin
}

func NewHTML() *HTML { return &HTML{} }

func (h *HTML) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:         "html",
		Version:      version,
		Type:         plugin.PluginTypeProcessor,
		Description:  "Passes HTML through unchanged",
		Capabilities: []string{plugin.ProcessesCapability("html"), plugin.ProcessesCapability("plain")},
	}
}

func (h *HTML) Process(_ *page.Context, content string) (string, error) {
	return content, nil
}
