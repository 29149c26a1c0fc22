// Package plugin provides the registry through which content processors and
// render listeners are made available to a build. Registries are created by
// the application and injected; there is no process-wide instance.
package plugin

import "fmt"

// Plugin represents a webtree extension with metadata and configuration
// validation.
type Plugin interface {
	// Metadata returns the plugin's metadata (name, version, type, capabilities).
	Metadata() PluginMetadata

	// Validate checks if the plugin can run with the given configuration.
	Validate(config map[string]any) error
}

// PluginLifecycle extends Plugin with optional lifecycle hooks.
type PluginLifecycle interface {
	Plugin

	// Init is called once per build before the first render.
	Init(pctx *PluginContext) error

	// Cleanup is called when the build finished.
	Cleanup() error
}

// PluginMetadata describes a plugin's identity and capabilities.
type PluginMetadata struct {
	Name        string // e.g. "markdown", "linkcheck"
	Version     string
	Type        PluginType
	Description string

	// Capabilities lists optional features this plugin provides. Content
	// processors publish the formats they handle as "processes:<format>".
	Capabilities []string
}

// String returns a human-readable representation of the plugin metadata.
func (m PluginMetadata) String() string {
	return fmt.Sprintf("%s@%s (%s)", m.Name, m.Version, m.Type)
}

// Validate checks the metadata. Errors match ErrInvalidPlugin.
func (m PluginMetadata) Validate() error {
	switch {
	case m.Name == "":
		return invalidPlugin("name is required", m)
	case m.Version == "":
		return invalidPlugin("version is required", m)
	case !m.Type.IsValid():
		return invalidPlugin("unknown type", m)
	}
	return nil
}

// Formats returns the formats a content processor handles. A processor
// without "processes:" capabilities handles the format named like itself.
func (m PluginMetadata) Formats() []string {
	if m.Type != PluginTypeProcessor {
		return nil
	}
	var formats []string
	for _, c := range m.Capabilities {
		if f, ok := CapabilityFormat(c); ok {
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		formats = []string{m.Name}
	}
	return formats
}

// BasePlugin provides no-op lifecycle hooks and accepts any configuration.
type BasePlugin struct{}

func (b *BasePlugin) Init(*PluginContext) error     { return nil }
func (b *BasePlugin) Cleanup() error                { return nil }
func (b *BasePlugin) Validate(map[string]any) error { return nil }
