package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyNodePath   = "node_path"
	KeyBlock      = "block"
	KeyProcessor  = "processor"
	KeyHandler    = "handler"
	KeySource     = "source"
	KeyEvent      = "event"
	KeyChainLen   = "chain_len"
	KeyDurationMS = "duration_ms"
	KeyLink       = "link"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func NodePath(p string) slog.Attr     { return slog.String(KeyNodePath, p) }
func Block(name string) slog.Attr     { return slog.String(KeyBlock, name) }
func Processor(name string) slog.Attr { return slog.String(KeyProcessor, name) }
func Handler(name string) slog.Attr   { return slog.String(KeyHandler, name) }
func Source(path string) slog.Attr    { return slog.String(KeySource, path) }
func Event(name string) slog.Attr     { return slog.String(KeyEvent, name) }
func ChainLen(n int) slog.Attr        { return slog.Int(KeyChainLen, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Link(href string) slog.Attr      { return slog.String(KeyLink, href) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
