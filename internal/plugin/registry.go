package plugin

import (
	"sync"

	ferrors "git.home.luguber.info/inful/webtree/internal/foundation/errors"
	"git.home.luguber.info/inful/webtree/internal/page"
)

type registration struct {
	name, version string
}

// Registry holds the plugins of one build. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]map[string]Plugin // map[name]map[version]Plugin
	order   []registration
}

// NewRegistry creates a new empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]map[string]Plugin),
	}
}

// Register adds a plugin. A second plugin with the same name and version
// fails with ErrDuplicate; processors must implement page.Processor.
func (r *Registry) Register(plugin Plugin) error {
	if plugin == nil {
		return invalidPlugin("nil plugin", PluginMetadata{})
	}

	metadata := plugin.Metadata()
	if err := metadata.Validate(); err != nil {
		return err
	}
	if metadata.Type == PluginTypeProcessor {
		if _, ok := plugin.(page.Processor); !ok {
			return invalidPlugin("not a content processor", metadata)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.plugins[metadata.Name] == nil {
		r.plugins[metadata.Name] = make(map[string]Plugin)
	}

	if _, exists := r.plugins[metadata.Name][metadata.Version]; exists {
		return ferrors.ValidationError("plugin already registered").
			WithContext("plugin", metadata.String()).
			Build()
	}

	r.plugins[metadata.Name][metadata.Version] = plugin
	r.order = append(r.order, registration{metadata.Name, metadata.Version})
	return nil
}

// List returns all registered plugins in registration order.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, 0, len(r.order))
	for _, reg := range r.order {
		result = append(result, r.plugins[reg.name][reg.version])
	}
	return result
}

// ListByType returns all plugins of a specific type in registration order.
func (r *Registry) ListByType(pluginType PluginType) []Plugin {
	var result []Plugin
	for _, plugin := range r.List() {
		if plugin.Metadata().Type == pluginType {
			result = append(result, plugin)
		}
	}
	return result
}

// ProcessorsByCapability returns a fresh map from format name to processor.
// When several processors handle the same format the last registered wins.
// Callers may keep or modify the map; the registry is not affected.
func (r *Registry) ProcessorsByCapability() map[string]page.Processor {
	out := make(map[string]page.Processor)
	for _, plugin := range r.ListByType(PluginTypeProcessor) {
		p, ok := plugin.(page.Processor)
		if !ok {
			continue
		}
		for _, format := range plugin.Metadata().Formats() {
			out[format] = p
		}
	}
	return out
}

// Count returns the total number of registered plugins (all versions).
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// InitAll validates and initializes every plugin. Validation uses the
// plugin's entry in pctx.Config. The first failure aborts.
func (r *Registry) InitAll(pctx *PluginContext) error {
	for _, plugin := range r.List() {
		name := plugin.Metadata().Name
		if err := plugin.Validate(pctx.PluginConfig(name)); err != nil {
			return failure(name, "validate", err)
		}
		if lc, ok := plugin.(PluginLifecycle); ok {
			if err := lc.Init(pctx); err != nil {
				return failure(name, "init", err)
			}
		}
	}
	return nil
}

// CleanupAll calls Cleanup on every lifecycle plugin in reverse registration
// order and returns the first error.
func (r *Registry) CleanupAll() error {
	plugins := r.List()
	var first error
	for i := len(plugins) - 1; i >= 0; i-- {
		lc, ok := plugins[i].(PluginLifecycle)
		if !ok {
			continue
		}
		if err := lc.Cleanup(); err != nil && first == nil {
			first = failure(lc.Metadata().Name, "cleanup", err)
		}
	}
	return first
}
