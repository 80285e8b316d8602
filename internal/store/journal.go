package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"botsdash/internal/model"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Journal is the sqlite copy of the event log. Entries are grouped by the
// session (one TUI run) that recorded them.
type Journal struct {
	db   *sql.DB
	path string
}

// JournalEntry is a stored log entry.
type JournalEntry struct {
	ID        int64          `json:"id" yaml:"id"`
	SessionID string         `json:"sessionId" yaml:"sessionId"`
	Entry     model.LogEntry `json:"entry" yaml:"entry"`
}

func OpenJournal(ctx context.Context, path string) (*Journal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the CLI read while a TUI session is writing.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateJournal(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db, path: path}, nil
}

func migrateJournal(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS log_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			at_unixms INTEGER NOT NULL,
			channel TEXT NOT NULL,
			event TEXT NOT NULL,
			status TEXT NOT NULL,
			message TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_log_entries_session ON log_entries(session_id, id);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (j *Journal) Path() string { return j.path }

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Append stores one entry under sessionID.
func (j *Journal) Append(ctx context.Context, sessionID string, e model.LogEntry) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.New("empty session id")
	}
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO log_entries(session_id, at_unixms, channel, event, status, message) VALUES(?, ?, ?, ?, ?, ?)`,
		sessionID, at.UnixMilli(), e.Channel, e.Event, e.Status, e.Message,
	)
	if err != nil {
		return fmt.Errorf("journal append: %w", err)
	}
	return nil
}

// List returns the newest limit entries (all when limit <= 0), oldest first.
// An empty sessionID lists every session.
func (j *Journal) List(ctx context.Context, limit int, sessionID string) ([]JournalEntry, error) {
	q := `SELECT id, session_id, at_unixms, channel, event, status, message FROM log_entries`
	var args []any
	if s := strings.TrimSpace(sessionID); s != "" {
		q += ` WHERE session_id = ?`
		args = append(args, s)
	}
	q += ` ORDER BY id DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		var je JournalEntry
		var atMs int64
		if err := rows.Scan(&je.ID, &je.SessionID, &atMs, &je.Entry.Channel, &je.Entry.Event, &je.Entry.Status, &je.Entry.Message); err != nil {
			return nil, err
		}
		je.Entry.At = time.UnixMilli(atMs).UTC()
		out = append(out, je)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}
	if out == nil {
		out = []JournalEntry{}
	}
	return out, nil
}

// Sessions lists session ids, most recent first.
func (j *Journal) Sessions(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT session_id FROM log_entries GROUP BY session_id ORDER BY MAX(id) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Session binds the journal to one session so it can back a log view.
type Session struct {
	ID      string
	journal *Journal
	timeout time.Duration
}

// NewSession starts a session with a fresh random id.
func (j *Journal) NewSession() *Session {
	return &Session{ID: uuid.NewString(), journal: j, timeout: 2 * time.Second}
}

// Record stores e; it satisfies the log view's journal interface.
func (s *Session) Record(e model.LogEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.journal.Append(ctx, s.ID, e)
}
