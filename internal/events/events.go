// Package events provides the synchronous event bus used to notify listeners
// about rendered nodes and build progress.
package events

import (
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/webtree/internal/tree"
)

// Event is a domain event published during a build.
type Event interface{ Name() string }

// Event names.
const (
	EventAfterNodeRendered = "afterNodeRendered"
	EventNodeWritten       = "nodeWritten"
	EventBuildStarted      = "buildStarted"
	EventBuildCompleted    = "buildCompleted"
)

// NodeRendered is dispatched after a block of a node rendered successfully.
type NodeRendered struct {
	BuildID  string
	Node     *tree.Node
	Block    string
	Output   string
	Duration time.Duration
}

func (NodeRendered) Name() string         { return EventAfterNodeRendered }
func (e NodeRendered) GetBuildID() string { return e.BuildID }

func (e NodeRendered) Payload() ([]byte, error) {
	return json.Marshal(map[string]any{
		"node":        e.Node.FullPath(),
		"block":       e.Block,
		"bytes":       len(e.Output),
		"duration_ms": e.Duration.Milliseconds(),
	})
}

// NodeWritten is dispatched after the output of a node was written.
type NodeWritten struct {
	BuildID string
	Node    *tree.Node
	Target  string
	Bytes   int64
}

func (NodeWritten) Name() string         { return EventNodeWritten }
func (e NodeWritten) GetBuildID() string { return e.BuildID }

func (e NodeWritten) Payload() ([]byte, error) {
	return json.Marshal(map[string]any{
		"node":   e.Node.FullPath(),
		"target": e.Target,
		"bytes":  e.Bytes,
	})
}

// BuildStarted is dispatched once the tree has been loaded.
type BuildStarted struct {
	BuildID string
	Nodes   int
}

func (BuildStarted) Name() string         { return EventBuildStarted }
func (e BuildStarted) GetBuildID() string { return e.BuildID }

// BuildCompleted is dispatched at the end of a build.
type BuildCompleted struct {
	BuildID  string
	Rendered int
	Skipped  int
	Failed   int
	Duration time.Duration
}

func (BuildCompleted) Name() string         { return EventBuildCompleted }
func (e BuildCompleted) GetBuildID() string { return e.BuildID }

func (e BuildCompleted) Payload() ([]byte, error) {
	return json.Marshal(map[string]any{
		"rendered":    e.Rendered,
		"skipped":     e.Skipped,
		"failed":      e.Failed,
		"duration_ms": e.Duration.Milliseconds(),
	})
}
