// Package audit persists one row per handled request in a SQLite database.
// It is optional: the server runs without it when no path is configured.
package audit

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one handled request.
type Entry struct {
	ID     string
	Peer   string
	Method string
	Target string
	Status int
	Bytes  int
	At     time.Time
}

// Log writes entries to the database. Record is safe for concurrent use,
// database/sql serializes access to the single connection pool.
type Log struct {
	conn *sql.DB
	log  *slog.Logger
}

// Open opens or creates the audit database at path.
func Open(path string, logger *slog.Logger) (*Log, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS requests (
			id TEXT PRIMARY KEY,
			peer TEXT NOT NULL,
			method TEXT NOT NULL,
			target TEXT NOT NULL,
			status INTEGER NOT NULL,
			bytes INTEGER NOT NULL,
			at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_requests_at ON requests(at);
	`
	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize audit schema: %w", err)
	}

	logger.Info("audit log open", "path", path)
	return &Log{conn: conn, log: logger}, nil
}

// Record inserts one entry. Failures are returned, not fatal: the caller
// logs and keeps serving.
func (l *Log) Record(e Entry) error {
	_, err := l.conn.Exec(
		`INSERT INTO requests (id, peer, method, target, status, bytes, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Peer, e.Method, e.Target, e.Status, e.Bytes,
		e.At.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record request %s: %w", e.ID, err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (l *Log) Recent(n int) ([]Entry, error) {
	rows, err := l.conn.Query(
		`SELECT id, peer, method, target, status, bytes, at
		 FROM requests ORDER BY at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&e.ID, &e.Peer, &e.Method, &e.Target, &e.Status, &e.Bytes, &at); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		e.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (l *Log) Close() error {
	return l.conn.Close()
}
