package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	ferrors "git.home.luguber.info/inful/webtree/internal/foundation/errors"
)

const (
	schema = `
CREATE TABLE IF NOT EXISTS node_fingerprints (
	path       TEXT PRIMARY KEY,
	digest     TEXT NOT NULL,
	recorded   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS build_events (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	build      TEXT NOT NULL,
	kind       TEXT NOT NULL,
	at         INTEGER NOT NULL,
	payload    BLOB,
	meta       TEXT
);
CREATE INDEX IF NOT EXISTS build_events_by_build ON build_events(build, seq);`

	selectFingerprints = `SELECT path, digest FROM node_fingerprints`
	upsertFingerprint  = `INSERT INTO node_fingerprints (path, digest, recorded) VALUES (?, ?, ?)
ON CONFLICT(path) DO UPDATE SET digest = excluded.digest, recorded = excluded.recorded`
	deleteFingerprint = `DELETE FROM node_fingerprints WHERE path = ?`
	insertEvent       = `INSERT INTO build_events (build, kind, at, payload, meta) VALUES (?, ?, ?, ?, ?)`
	selectEvents      = `SELECT seq, build, kind, at, payload, meta FROM build_events WHERE build = ? ORDER BY seq`
)

// SQLiteStore persists fingerprints and build events in a SQLite file, so
// incremental builds survive process restarts.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens path, creating the schema on first use. ":memory:"
// gives a throwaway database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, storeErr("failed to open state database", err).WithContext("path", path).Build()
	}
	// One connection: ":memory:" databases live per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, storeErr("failed to create state schema", err).WithContext("path", path).Build()
	}
	return &SQLiteStore{db: db}, nil
}

func storeErr(msg string, cause error) *ferrors.ErrorBuilder {
	return ferrors.StateError(msg).WithCause(cause)
}

func (s *SQLiteStore) LoadFingerprints(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectFingerprints)
	if err != nil {
		return nil, storeErr("failed to read fingerprints", err).Build()
	}
	defer func() { _ = rows.Close() }()

	fps := map[string]string{}
	for rows.Next() {
		var path, digest string
		if err := rows.Scan(&path, &digest); err != nil {
			return nil, storeErr("failed to read fingerprints", err).Build()
		}
		fps[path] = digest
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to read fingerprints", err).Build()
	}
	return fps, nil
}

func (s *SQLiteStore) SaveFingerprints(ctx context.Context, set map[string]string, remove []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("failed to save fingerprints", err).Build()
	}
	now := time.Now().Unix()
	for path, digest := range set {
		if _, err := tx.ExecContext(ctx, upsertFingerprint, path, digest, now); err != nil {
			_ = tx.Rollback()
			return storeErr("failed to save fingerprints", err).WithContext("node", path).Build()
		}
	}
	for _, path := range remove {
		if _, err := tx.ExecContext(ctx, deleteFingerprint, path); err != nil {
			_ = tx.Rollback()
			return storeErr("failed to save fingerprints", err).WithContext("node", path).Build()
		}
	}
	if err := tx.Commit(); err != nil {
		return storeErr("failed to save fingerprints", err).Build()
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, buildID, eventType string, payload []byte, metadata map[string]string) error {
	var meta []byte
	if len(metadata) > 0 {
		var err error
		if meta, err = json.Marshal(metadata); err != nil {
			return storeErr("failed to encode event metadata", err).WithContext("event", eventType).Build()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, insertEvent, buildID, eventType, time.Now().UnixMilli(), payload, meta); err != nil {
		return storeErr("failed to append event", err).
			WithContext("build_id", buildID).
			WithContext("event", eventType).
			Build()
	}
	return nil
}

// EventsForBuild returns the events of buildID in append order.
func (s *SQLiteStore) EventsForBuild(ctx context.Context, buildID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectEvents, buildID)
	if err != nil {
		return nil, storeErr("failed to read events", err).WithContext("build_id", buildID).Build()
	}
	defer func() { _ = rows.Close() }()

	var out []Event
	for rows.Next() {
		var (
			e    Event
			at   int64
			meta []byte
		)
		if err := rows.Scan(&e.ID, &e.BuildID, &e.Type, &at, &e.Payload, &meta); err != nil {
			return nil, storeErr("failed to read events", err).WithContext("build_id", buildID).Build()
		}
		e.Timestamp = time.UnixMilli(at)
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, storeErr("failed to decode event metadata", err).WithContext("build_id", buildID).Build()
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("failed to read events", err).WithContext("build_id", buildID).Build()
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
