// Package history records past validation runs in a SQLite database, so
// an operator (or the MCP tool) can ask "did this tree pass last time"
// without re-running the engine. Grounded on the teacher's
// internal/ingest/sqlite_writer.go: same driver, same PRAGMA tuning for
// a single-writer workload, same prepared-statement-under-one-mutex shape.
package history

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one recorded validation pass.
type Run struct {
	ID             int64
	Timestamp      time.Time
	Target         string
	Schema         string
	Passed         bool
	ViolationCount int
	Report         string
}

// Store wraps a SQLite database of past Runs.
type Store struct {
	db         *sql.DB
	stmtInsert *sql.Stmt
	mu         sync.Mutex
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts INTEGER NOT NULL,
	target TEXT NOT NULL,
	schema_path TEXT NOT NULL,
	passed INTEGER NOT NULL,
	violation_count INTEGER NOT NULL,
	report TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_target ON runs(target, ts DESC);
`

// Open creates or attaches to a history database at dbPath, applying the
// same durability/throughput tradeoff the teacher's bulk ingest writer
// uses: WAL journaling and relaxed synchronous mode, since a lost last
// write just means a missing history row, not corrupted validation state.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open %q: %w", dbPath, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: set journal_mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: set synchronous: %w", err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}

	stmt, err := db.Prepare(`INSERT INTO runs (ts, target, schema_path, passed, violation_count, report)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: prepare insert: %w", err)
	}

	return &Store{db: db, stmtInsert: stmt}, nil
}

// Record stores one validation run and returns its assigned ID.
func (s *Store) Record(target, schemaPath string, passed bool, violationCount int, report string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.stmtInsert.Exec(time.Now().UnixNano(), target, schemaPath, boolToInt(passed), violationCount, report)
	if err != nil {
		return 0, fmt.Errorf("history: record run: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns the most recent runs for a target, newest first.
func (s *Store) Recent(target string, limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, ts, target, schema_path, passed, violation_count, report
		 FROM runs WHERE target = ? ORDER BY ts DESC LIMIT ?`, target, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var r Run
		var ts int64
		var passed int
		if err := rows.Scan(&r.ID, &ts, &r.Target, &r.Schema, &passed, &r.ViolationCount, &r.Report); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		r.Timestamp = time.Unix(0, ts)
		r.Passed = passed != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the prepared statement and the database handle.
func (s *Store) Close() error {
	_ = s.stmtInsert.Close()
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
