// Package storage keeps an optional SQLite ledger of past runs. It records
// run metadata only (window, counts, outcome), never page payloads or
// filenames, so the cache directory stays self-contained.
package storage

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

const DefaultPath = "droplog.sqlite"

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  id            INTEGER PRIMARY KEY,
  started_at    DATETIME NOT NULL,
  window_start  TEXT NOT NULL,
  window_end    TEXT NOT NULL,
  pages         INTEGER NOT NULL,
  events        INTEGER NOT NULL,
  outcome       TEXT NOT NULL CHECK (outcome IN ('ok','failed')),
  error         TEXT
);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

type Run struct {
	StartedAt   time.Time
	WindowStart string
	WindowEnd   string
	Pages       int
	Events      int
	Outcome     string
	Error       string
}

// RecordRun appends one row describing a finished run.
func (d *DB) RecordRun(ctx context.Context, r Run) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO runs(started_at, window_start, window_end, pages, events, outcome, error) VALUES(?,?,?,?,?,?,?)`,
		r.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		r.WindowStart, r.WindowEnd, r.Pages, r.Events, r.Outcome, nullIfEmpty(r.Error))
	return err
}

// ListRuns returns the most recent runs, newest first.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.sql.QueryContext(ctx,
		`SELECT started_at, window_start, window_end, pages, events, outcome, error FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAtStr string
		var errNS sql.NullString
		if err := rows.Scan(&startedAtStr, &r.WindowStart, &r.WindowEnd, &r.Pages, &r.Events, &r.Outcome, &errNS); err != nil {
			return nil, err
		}
		if t, perr := time.Parse("2006-01-02 15:04:05", startedAtStr); perr == nil {
			r.StartedAt = t
		} else if t2, perr2 := time.Parse(time.RFC3339, startedAtStr); perr2 == nil {
			r.StartedAt = t2
		}
		if errNS.Valid {
			r.Error = errNS.String
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
