// Package journal keeps a sqlite log of every record outcome, one row per
// processed record per run. The id-map files answer "what maps to what"; the
// journal answers "what happened and when", including skips and failures
// that never reach an id map.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS outcomes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	old_id TEXT NOT NULL,
	new_id TEXT NOT NULL DEFAULT '',
	outcome TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_outcomes_run ON outcomes(run_id);
CREATE INDEX IF NOT EXISTS idx_outcomes_old ON outcomes(kind, old_id);
`

// Journal is an append-only outcome log scoped to one run.
type Journal struct {
	db    *sql.DB
	runID string
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}

	return &Journal{db: db, runID: uuid.NewString()}, nil
}

// RunID identifies this process invocation in the journal.
func (j *Journal) RunID() string { return j.runID }

// Record appends one outcome row.
func (j *Journal) Record(kind, oldID, newID, outcome, detail string) error {
	_, err := j.db.Exec(
		`INSERT INTO outcomes (run_id, kind, old_id, new_id, outcome, detail, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.runID, kind, oldID, newID, outcome, detail, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to write journal row: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
