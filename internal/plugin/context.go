package plugin

import (
	"context"
	"log/slog"
)

// PluginContext is handed to every plugin's Init for one build.
type PluginContext struct {
	Context   context.Context
	Logger    *slog.Logger
	OutputDir string
	BuildID   string
	// Config maps plugin names to their settings from the configuration file.
	Config map[string]map[string]any
}

// NewPluginContext returns a context for build buildID writing below outputDir.
// A nil logger uses slog.Default.
func NewPluginContext(ctx context.Context, logger *slog.Logger, outputDir, buildID string) *PluginContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &PluginContext{
		Context:   ctx,
		Logger:    logger,
		OutputDir: outputDir,
		BuildID:   buildID,
		Config:    map[string]map[string]any{},
	}
}

// PluginConfig returns the settings of the named plugin, never nil.
func (pc *PluginContext) PluginConfig(name string) map[string]any {
	if cfg := pc.Config[name]; cfg != nil {
		return cfg
	}
	return map[string]any{}
}
