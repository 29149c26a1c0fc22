package state

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu           sync.RWMutex
	fingerprints map[string]string
	events       []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{fingerprints: map[string]string{}}
}

func (m *MemoryStore) LoadFingerprints(context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.fingerprints), nil
}

func (m *MemoryStore) SaveFingerprints(_ context.Context, set map[string]string, remove []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	maps.Copy(m.fingerprints, set)
	for _, path := range remove {
		delete(m.fingerprints, path)
	}
	return nil
}

func (m *MemoryStore) Append(_ context.Context, buildID, eventType string, payload []byte, metadata map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, Event{
		ID:        int64(len(m.events) + 1),
		BuildID:   buildID,
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   slices.Clone(payload),
		Metadata:  maps.Clone(metadata),
	})
	return nil
}

func (m *MemoryStore) EventsForBuild(_ context.Context, buildID string) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Event
	for _, e := range m.events {
		if e.BuildID == buildID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
