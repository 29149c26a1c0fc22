package state

import (
	"context"
	"time"
)

// FingerprintStore records node fingerprints between builds. Keys are node
// full paths.
type FingerprintStore interface {
	LoadFingerprints(ctx context.Context) (map[string]string, error)
	// SaveFingerprints upserts set and deletes remove in one transaction.
	SaveFingerprints(ctx context.Context, set map[string]string, remove []string) error
}

// EventLog stores build events.
type EventLog interface {
	Append(ctx context.Context, buildID, eventType string, payload []byte, metadata map[string]string) error
	EventsForBuild(ctx context.Context, buildID string) ([]Event, error)
}

// Store is the complete state backend.
type Store interface {
	FingerprintStore
	EventLog
	Close() error
}

// Event is a persisted build event.
type Event struct {
	ID        int64
	BuildID   string
	Type      string
	Timestamp time.Time
	Payload   []byte
	Metadata  map[string]string
}
