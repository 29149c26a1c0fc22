package plugin

import (
	"strings"

	ferrors "git.home.luguber.info/inful/webtree/internal/foundation/errors"
)

// PluginType identifies the category of plugin.
type PluginType string

const (
	// PluginTypeProcessor transforms block content during rendering.
	PluginTypeProcessor PluginType = "processor"

	// PluginTypeListener is subscribed to build events.
	PluginTypeListener PluginType = "listener"
)

// IsValid returns true if the plugin type is recognized.
func (t PluginType) IsValid() bool {
	return t == PluginTypeProcessor || t == PluginTypeListener
}

const processesPrefix = "processes:"

// ProcessesCapability returns the capability a processor declares for format.
func ProcessesCapability(format string) string {
	return processesPrefix + format
}

// CapabilityFormat extracts the format from a "processes:<format>" capability.
func CapabilityFormat(capability string) (string, bool) {
	f, ok := strings.CutPrefix(capability, processesPrefix)
	if !ok || f == "" {
		return "", false
	}
	return f, true
}

var (
	ErrDuplicate     = ferrors.ValidationError("plugin already registered").Build()
	ErrInvalidPlugin = ferrors.ValidationError("invalid plugin").Build()
)

// failure wraps an error returned by a plugin hook.
func failure(name, hook string, err error) error {
	return ferrors.WrapError(err, ferrors.CategoryBuild, "plugin "+hook+" failed").
		WithContext("plugin", name).
		Build()
}

func invalidPlugin(reason string, m PluginMetadata) error {
	return ferrors.ValidationError("invalid plugin").
		WithContext("reason", reason).
		WithContext("plugin", m.String()).
		Build()
}
