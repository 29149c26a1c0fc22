package processors

import (
	"fmt"
	"strings"
	"text/template"

	"git.home.luguber.info/inful/webtree/internal/foundation/errors"
	"git.home.luguber.info/inful/webtree/internal/page"
	"git.home.luguber.info/inful/webtree/internal/plugin"
)

// Template executes block content as a text/template.
//
// Functions available to templates:
//
//	render [name]      content of the named block (default "content") of the
//	                   next element in the template chain
//	meta key           meta value of the node being rendered
//	title, lang        shortcuts for meta "title" and meta "lang"
//	fullpath           full path of the node being rendered
//	relocatable path   path resolved relative to the block owner, as a route
//	                   from the node being rendered
type Template struct {
	plugin.BasePlugin
}

func NewTemplate() *Template { return &Template{} }

func (t *Template) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:         "template",
		Version:      version,
		Type:         plugin.PluginTypeProcessor,
		Description:  "Executes content as a Go text/template",
		Capabilities: []string{plugin.ProcessesCapability("template")},
	}
}

// TemplateData is the dot value of an executed template.
type TemplateData struct {
	Node  page.Element
	Owner page.Element
	Block string
}

func (t *Template) Process(ctx *page.Context, content string) (string, error) {
	owner := ctx.Owner()
	tpl, err := template.New(owner.FullPath()).
		Option("missingkey=zero").
		Funcs(templateFuncs(ctx)).
		Parse(content)
	if err != nil {
		return "", errors.RenderError("processor failure").
			WithCause(err).
			WithContext("processor", "template").
			WithContext("node", owner.FullPath()).
			Build()
	}

	var buf strings.Builder
	data := TemplateData{Node: ctx.Node(), Owner: owner, Block: ctx.Block.Name}
	if err := tpl.Execute(&buf, data); err != nil {
		// Render errors from nested blocks keep their classification.
		if cause, ok := errors.AsClassified(err); ok {
			return "", cause
		}
		return "", fmt.Errorf("render template %s: %w", owner.FullPath(), err)
	}
	return buf.String(), nil
}

func templateFuncs(ctx *page.Context) template.FuncMap {
	metaString := func(key string) string {
		v, ok := ctx.Node().MetaValue(key)
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}
	return template.FuncMap{
		"render": func(name ...string) (string, error) {
			blockName := page.DefaultBlockName
			if len(name) > 0 && name[0] != "" {
				blockName = name[0]
			}
			return ctx.RenderNext(blockName)
		},
		"meta": func(key string) any {
			if v, ok := ctx.Node().MetaValue(key); ok && v != nil {
				return v
			}
			return ""
		},
		"title":    func() string { return metaString("title") },
		"lang":     func() string { return metaString("lang") },
		"fullpath": func() string { return ctx.Node().FullPath() },
		"relocatable": func(path string) string {
			route, _ := ctx.Owner().LinkFrom(ctx.Node(), path)
			return route
		},
	}
}
