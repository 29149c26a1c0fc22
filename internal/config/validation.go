package config

import (
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"

	ferrors "git.home.luguber.info/inful/webtree/internal/foundation/errors"
)

// Normalize case-folds enumerations and canonicalizes the default lang.
func (c *Config) Normalize() error {
	if c.Logging.Level != "" {
		lvl, err := NormalizeLogLevel(string(c.Logging.Level))
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid logging.level").Build()
		}
		c.Logging.Level = lvl
	}
	if c.Logging.Format != "" {
		f, err := NormalizeLogFormat(string(c.Logging.Format))
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid logging.format").Build()
		}
		c.Logging.Format = f
	}
	if c.Lang != "" {
		tag, err := language.Parse(c.Lang)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid lang").
				WithContext("lang", c.Lang).
				Build()
		}
		c.Lang = tag.String()
	}
	c.DefaultFormat = strings.ReplaceAll(c.DefaultFormat, " ", "")
	return nil
}

// Validate checks a defaulted configuration.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return invalid("workers must be at least 1", "workers")
	}
	if filepath.Clean(c.Source) == filepath.Clean(c.Output) {
		return invalid("source and output must differ", "output")
	}
	if strings.ContainsAny(c.TemplateName, `/\`) {
		return invalid("template_name must be a file name", "template_name")
	}
	d, err := time.ParseDuration(c.Watch.PollInterval)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid watch.poll_interval").Build()
	}
	if d <= 0 {
		return invalid("watch.poll_interval must be positive", "watch.poll_interval")
	}
	return nil
}

// PollInterval returns the parsed watch poll interval.
func (c *Config) PollInterval() time.Duration {
	d, err := time.ParseDuration(c.Watch.PollInterval)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

func invalid(msg, field string) error {
	return ferrors.ConfigError(msg).WithContext("field", field).Build()
}
