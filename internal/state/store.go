// Package state persists per-document content hashes and build run records
// in SQLite, letting watch mode skip rebuilds when nothing changed.
package state

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	fferrors "git.home.luguber.info/inful/fmforge/internal/foundation/errors"
)

// Store tracks document hashes across builds.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Run is a recorded build run.
type Run struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Documents int
	Success   bool
}

// NewStore opens (or creates) the state database.
// Use ":memory:" for an in-memory store, or a file path for persistence.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fferrors.WrapError(err, fferrors.CategoryState, "open state database").Build()
	}
	// A :memory: database exists per connection; a single pooled connection
	// keeps every statement on the same database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fferrors.WrapError(err, fferrors.CategoryState, "initialize state schema").Build()
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		documents INTEGER NOT NULL,
		success INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// HashContent returns the hex-encoded content hash used for change detection.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// RecordDocument stores the current hash for a document path.
func (s *Store) RecordDocument(ctx context.Context, path, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO documents (path, hash, updated_at) VALUES (?, ?, ?) ON CONFLICT(path) DO UPDATE SET hash = excluded.hash, updated_at = excluded.updated_at",
		path, hash, time.Now().Unix(),
	)
	if err != nil {
		return fferrors.WrapError(err, fferrors.CategoryState, "record document").WithContext("path", path).Build()
	}
	return nil
}

// DocumentHash returns the stored hash for a path, or "" when unknown.
func (s *Store) DocumentHash(ctx context.Context, path string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hash string
	err := s.db.QueryRowContext(ctx, "SELECT hash FROM documents WHERE path = ?", path).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fferrors.WrapError(err, fferrors.CategoryState, "query document hash").WithContext("path", path).Build()
	}
	return hash, nil
}

// ChangedPaths compares current hashes against stored ones and returns the
// paths that are new or modified. Stored paths absent from current are
// removed from the store.
func (s *Store) ChangedPaths(ctx context.Context, current map[string]string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, "SELECT path, hash FROM documents")
	if err != nil {
		return nil, fferrors.WrapError(err, fferrors.CategoryState, "query documents").Build()
	}
	defer rows.Close()

	stored := make(map[string]string)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, fferrors.WrapError(err, fferrors.CategoryState, "scan document row").Build()
		}
		stored[path] = hash
	}
	if err := rows.Err(); err != nil {
		return nil, fferrors.WrapError(err, fferrors.CategoryState, "iterate document rows").Build()
	}

	var changed []string
	for path, hash := range current {
		if stored[path] != hash {
			changed = append(changed, path)
		}
	}

	for path := range stored {
		if _, ok := current[path]; !ok {
			if _, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE path = ?", path); err != nil {
				return nil, fferrors.WrapError(err, fferrors.CategoryState, "prune document").WithContext("path", path).Build()
			}
			changed = append(changed, path)
		}
	}

	return changed, nil
}

// RecordRun stores a completed build run.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	success := 0
	if run.Success {
		success = 1
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (run_id, started_at, duration_ms, documents, success) VALUES (?, ?, ?, ?, ?)",
		run.RunID, run.StartedAt.Unix(), run.Duration.Milliseconds(), run.Documents, success,
	)
	if err != nil {
		return fferrors.WrapError(err, fferrors.CategoryState, "record run").WithContext("run_id", run.RunID).Build()
	}
	return nil
}

// LastRun returns the most recent recorded run, or nil when none exist.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		run        Run
		startedAt  int64
		durationMS int64
		success    int
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT run_id, started_at, duration_ms, documents, success FROM runs ORDER BY started_at DESC, run_id DESC LIMIT 1",
	).Scan(&run.RunID, &startedAt, &durationMS, &run.Documents, &success)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fferrors.WrapError(err, fferrors.CategoryState, "query last run").Build()
	}

	run.StartedAt = time.Unix(startedAt, 0)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.Success = success == 1
	return &run, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
