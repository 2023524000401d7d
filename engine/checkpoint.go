package engine

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// CheckpointStore persists job state to SQLite so interrupted jobs can
// resume. One row per job, overwritten after every cycle.
type CheckpointStore struct {
	db *sql.DB
}

// OpenCheckpointStore opens (creating if needed) the checkpoint database at
// dbPath.
func OpenCheckpointStore(dbPath string) (*CheckpointStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("checkpoint: create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open sqlite: %w", err)
	}

	s := &CheckpointStore{db: db}
	if err := s.configure(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *CheckpointStore) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := s.db.Exec(p); err != nil {
			return fmt.Errorf("checkpoint: sqlite pragma %q: %w", p, err)
		}
	}
	return nil
}

func (s *CheckpointStore) initSchema() error {
	const schema = `CREATE TABLE IF NOT EXISTS checkpoints (
		job_id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("checkpoint: init schema: %w", err)
	}
	return nil
}

// Save upserts the state for its job.
func (s *CheckpointStore) Save(state *State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("checkpoint: marshal state: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO checkpoints (job_id, state, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(job_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		state.JobID, string(raw))
	if err != nil {
		return fmt.Errorf("checkpoint: save %s: %w", state.JobID, err)
	}
	return nil
}

// Load returns the saved state for jobID, or (nil, nil) when none exists.
func (s *CheckpointStore) Load(jobID string) (*State, error) {
	var raw string
	err := s.db.QueryRow(`SELECT state FROM checkpoints WHERE job_id = ?`, jobID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("checkpoint: load %s: %w", jobID, err)
	}
	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("checkpoint: decode %s: %w", jobID, err)
	}
	return &state, nil
}

// Delete removes the checkpoint for jobID. Missing rows are not an error.
func (s *CheckpointStore) Delete(jobID string) error {
	if _, err := s.db.Exec(`DELETE FROM checkpoints WHERE job_id = ?`, jobID); err != nil {
		return fmt.Errorf("checkpoint: delete %s: %w", jobID, err)
	}
	return nil
}

// Close releases the database handle.
func (s *CheckpointStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
