package config

import "runtime"

// Default values.
const (
	DefaultSource         = "src"
	DefaultOutput         = "out"
	DefaultStateFile      = ".webtree/state.db"
	DefaultLang           = "en"
	DefaultFormat         = "markdown"
	DefaultTemplateName   = "default.template"
	DefaultHighlightStyle = "github"
	DefaultPollInterval   = "30s"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	setDefault(&c.Source, DefaultSource)
	setDefault(&c.Output, DefaultOutput)
	setDefault(&c.StateFile, DefaultStateFile)
	setDefault(&c.Lang, DefaultLang)
	setDefault(&c.DefaultFormat, DefaultFormat)
	setDefault(&c.TemplateName, DefaultTemplateName)
	setDefault(&c.HighlightStyle, DefaultHighlightStyle)
	setDefault(&c.Watch.PollInterval, DefaultPollInterval)
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
