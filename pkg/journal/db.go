// Package journal keeps a SQLite record of one client session: every
// position and evaluation the store applied, every move sent and every error
// surfaced. It backs the Stats tab and the --journal dump. By default the
// database lives in memory and disappears with the process.
package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Dicklesworthstone/chess_viewer/pkg/model"
)

// Memory is the path of a private in-memory journal.
const Memory = ":memory:"

// DB is a session journal. It is safe for concurrent use.
type DB struct {
	db *sql.DB

	mu      sync.Mutex
	session int64
	now     func() time.Time
}

// Open opens or creates the journal at path. Use Memory for a journal that
// lives only as long as the process.
func Open(path string) (*DB, error) {
	if path == "" {
		path = Memory
	}
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// Every connection to :memory: is its own database, so the pool must hold
	// exactly one connection and never recycle it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	j := &DB{db: db, now: time.Now}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return j, nil
}

// Close closes the database connection
func (j *DB) Close() error {
	return j.db.Close()
}

func (j *DB) initSchema() error {
	schema := `
	PRAGMA foreign_keys = ON;
	PRAGMA busy_timeout = 5000;

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id TEXT NOT NULL,
		server TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at INTEGER
	);

	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL REFERENCES sessions(id),
		kind TEXT NOT NULL,
		payload TEXT NOT NULL DEFAULT '',
		score REAL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_session_kind ON entries(session_id, kind);
	`
	_, err := j.db.Exec(schema)
	return err
}

// StartSession opens a new session; later Record calls attach to it.
func (j *DB) StartSession(clientID, server string) (*model.SessionSummary, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.startLocked(clientID, server)
}

func (j *DB) startLocked(clientID, server string) (*model.SessionSummary, error) {
	now := j.now()
	result, err := j.db.Exec(`
		INSERT INTO sessions (client_id, server, started_at)
		VALUES (?, ?, ?)
	`, clientID, server, now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	j.session = id
	return &model.SessionSummary{ID: id, ClientID: clientID, Server: server, StartedAt: time.UnixMilli(now.UnixMilli())}, nil
}

// Record appends an entry to the current session, starting an anonymous
// session if none is open.
func (j *DB) Record(e model.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.session == 0 {
		if _, err := j.startLocked("", ""); err != nil {
			return err
		}
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = j.now()
	}

	var score sql.NullFloat64
	if e.Score != nil {
		score = sql.NullFloat64{Float64: *e.Score, Valid: true}
	}
	_, err := j.db.Exec(`
		INSERT INTO entries (session_id, kind, payload, score, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, j.session, e.Kind, e.Payload, score, e.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("record %s: %w", e.Kind, err)
	}
	return nil
}

// EndSession stamps the current session as finished. It is a no-op without
// an open session.
func (j *DB) EndSession() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.session == 0 {
		return nil
	}
	_, err := j.db.Exec(`UPDATE sessions SET ended_at = ? WHERE id = ?`, j.now().UnixMilli(), j.session)
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	j.session = 0
	return nil
}

// CurrentSession returns the id of the open session, or 0
func (j *DB) CurrentSession() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.session
}

// Entries returns a session's entries in insertion order, optionally limited
// to one kind.
func (j *DB) Entries(sessionID int64, kind string) ([]model.JournalEntry, error) {
	query := `
		SELECT id, kind, payload, score, created_at
		FROM entries
		WHERE session_id = ?`
	args := []any{sessionID}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY id`

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.JournalEntry
	for rows.Next() {
		var (
			e       model.JournalEntry
			score   sql.NullFloat64
			created int64
		)
		if err := rows.Scan(&e.ID, &e.Kind, &e.Payload, &score, &created); err != nil {
			return nil, err
		}
		if score.Valid {
			v := score.Float64
			e.Score = &v
		}
		e.CreatedAt = time.UnixMilli(created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Evaluations returns the session's evaluation scores in arrival order
func (j *DB) Evaluations(sessionID int64) ([]float64, error) {
	rows, err := j.db.Query(`
		SELECT score FROM entries
		WHERE session_id = ? AND kind = ? AND score IS NOT NULL
		ORDER BY id
	`, sessionID, model.JournalEvaluation)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ErrNoSession is returned by GetSession for an unknown id.
var ErrNoSession = errors.New("journal: no such session")

// GetSession returns a session with its per-kind counts
func (j *DB) GetSession(id int64) (*model.SessionSummary, error) {
	var (
		s       model.SessionSummary
		started int64
		ended   sql.NullInt64
	)
	err := j.db.QueryRow(`
		SELECT id, client_id, server, started_at, ended_at
		FROM sessions WHERE id = ?
	`, id).Scan(&s.ID, &s.ClientID, &s.Server, &started, &ended)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	s.StartedAt = time.UnixMilli(started)
	if ended.Valid {
		t := time.UnixMilli(ended.Int64)
		s.EndedAt = &t
	}

	rows, err := j.db.Query(`SELECT kind, COUNT(*) FROM entries WHERE session_id = ? GROUP BY kind`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		switch kind {
		case model.JournalPosition:
			s.Positions = n
		case model.JournalEvaluation:
			s.Evaluations = n
		case model.JournalMove:
			s.Moves = n
		case model.JournalError:
			s.Errors = n
		}
	}
	return &s, rows.Err()
}

// Sessions lists every session, newest first.
func (j *DB) Sessions() ([]model.SessionSummary, error) {
	rows, err := j.db.Query(`SELECT id FROM sessions ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]model.SessionSummary, 0, len(ids))
	for _, id := range ids {
		s, err := j.GetSession(id)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}
