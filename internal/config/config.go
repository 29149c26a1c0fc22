// Package config loads the webtree.yaml configuration.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/webtree/internal/foundation/errors"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "webtree.yaml"

// ErrConfigNotFound is returned by Load when the configuration file is missing.
var ErrConfigNotFound = ferrors.NewError(ferrors.CategoryNotFound, "configuration file not found").Build()

// Config is the configuration of a webtree site.
type Config struct {
	// Source is the directory holding pages, templates and static files.
	Source string `yaml:"source"`
	// Output is the directory rendered nodes are written to.
	Output string `yaml:"output"`
	// StateFile is the SQLite database holding fingerprints of the previous build.
	StateFile string `yaml:"state_file"`
	// Lang is the default lang meta value of pages.
	Lang string `yaml:"lang"`
	// DefaultFormat is the processor pipeline of blocks without a format option.
	DefaultFormat string `yaml:"default_format"`
	// TemplateName is the file name a directory uses to declare its template.
	TemplateName string `yaml:"template_name"`
	// Workers is the number of nodes rendered concurrently.
	Workers int `yaml:"workers"`
	// HighlightStyle is the chroma style of highlighted code blocks.
	HighlightStyle string `yaml:"highlight_style"`

	Markdown MarkdownConfig `yaml:"markdown"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Watch    WatchConfig    `yaml:"watch"`

	// Plugins holds per-plugin options keyed by plugin name.
	Plugins map[string]map[string]any `yaml:"plugins,omitempty"`
}

// MarkdownConfig configures the markdown processor.
type MarkdownConfig struct {
	Unsafe    bool `yaml:"unsafe"`
	HardWraps bool `yaml:"hard_wraps"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig configures the Prometheus endpoint served in watch mode.
type MetricsConfig struct {
	// Address to listen on, e.g. ":9090". Empty disables the endpoint.
	Address string `yaml:"address"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	// PollInterval is a Go duration; a full rebuild is scheduled at this
	// interval in addition to file system notifications.
	PollInterval string `yaml:"poll_interval"`
}

// Load reads, expands, normalizes, defaults and validates the configuration
// at path. Environment variables from a .env file next to the process are
// loaded first; ${VAR} references in the file are expanded. Relative paths
// are resolved against the directory of the configuration file.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ferrors.NewError(ferrors.CategoryNotFound, "configuration file not found").
			WithContext("path", path).
			Build()
	}
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read configuration").
			WithContext("path", path).
			Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes YAML configuration data and applies normalization, defaults
// and validation. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid configuration").Build()
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{&c.Source, &c.Output, &c.StateFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// Init writes an example configuration to path. An existing file is only
// replaced when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists").
			WithContext("path", path).
			WithContext("hint", "use --force to overwrite").
			Build()
	}
	example := Default()
	example.Metrics.Address = ":9090"
	data, err := yaml.Marshal(example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode default configuration").Build()
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write configuration").
			WithContext("path", path).
			Build()
	}
	return nil
}
