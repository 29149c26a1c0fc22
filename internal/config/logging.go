package config

import (
	"log/slog"

	"git.home.luguber.info/inful/webtree/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevels = normalization.New("log level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
})

// NormalizeLogLevel maps raw to a LogLevel, case-insensitively.
func NormalizeLogLevel(raw string) (LogLevel, error) {
	return logLevels.Normalize(raw)
}

// SlogLevel converts the level for slog handlers.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormats = normalization.New("log format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
})

// NormalizeLogFormat maps raw to a LogFormat, case-insensitively.
func NormalizeLogFormat(raw string) (LogFormat, error) {
	return logFormats.Normalize(raw)
}
