// Package queue is the durable side of scheduling: a SQLite database holding
// pending fire jobs, last-fire times, the daemon heartbeat and the history
// of finished segments.
package queue

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

const currentVersion = 2

// Queue wraps the scheduling database.
type Queue struct {
	db  *sql.DB
	now func() time.Time

	mu      sync.Mutex
	entropy io.Reader
}

// Open opens (or creates) the SQLite database at dbPath and runs migrations.
func Open(dbPath string) (*Queue, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	q := &Queue{
		db:      db,
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	if err := q.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return q, nil
}

// NewMemory creates an in-memory queue for testing.
func NewMemory() (*Queue, error) {
	return Open(":memory:")
}

// SetClock replaces time.Now. Tests use it to make jobs due.
func (q *Queue) SetClock(now func() time.Time) { q.now = now }

func (q *Queue) Close() error {
	return q.db.Close()
}

func (q *Queue) migrate() error {
	var version int
	err := q.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := q.migrateV1(); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := q.migrateV2(); err != nil {
			return err
		}
	}

	_, err = q.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (q *Queue) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS jobs (
		timer_id    TEXT PRIMARY KEY,
		job_id      TEXT NOT NULL,
		due_at      TEXT NOT NULL,
		created_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_due ON jobs(due_at);

	CREATE TABLE IF NOT EXISTS fires (
		timer_id  TEXT PRIMARY KEY,
		fired_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS segments (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		timer_id     TEXT NOT NULL,
		label        TEXT NOT NULL DEFAULT '',
		seconds      INTEGER NOT NULL DEFAULT 0,
		sequence     INTEGER NOT NULL DEFAULT 0,
		finished_at  TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_segments_finished ON segments(finished_at);

	CREATE TABLE IF NOT EXISTS heartbeat (
		id       INTEGER PRIMARY KEY CHECK (id = 1),
		pid      INTEGER NOT NULL,
		beat_at  TEXT NOT NULL
	);
	`
	_, err := q.db.Exec(ddl)
	return err
}

// migrateV2 lets a claimed job stay visible until its fire is handled.
func (q *Queue) migrateV2() error {
	_, err := q.db.Exec(`ALTER TABLE jobs ADD COLUMN claimed_at TEXT`)
	return err
}

func (q *Queue) newJobID(at time.Time) string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), q.entropy).String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
