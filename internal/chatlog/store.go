package chatlog

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	. "github.com/roelfdiedericks/agentloop/internal/logging"
)

// Store is a sqlite index over logged messages. The JSONL files remain
// the source of truth; the index exists for cross-session queries.
type Store struct {
	db *sql.DB
}

// IndexedMessage is one row in the transcript index
type IndexedMessage struct {
	ID         string
	SessionKey string
	Timestamp  time.Time
	Role       string
	Content    string
}

// OpenStore opens (or creates) the transcript index at dbPath.
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("chatlog: open index: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// initSchema creates the transcript index tables
func initSchema(db *sql.DB) error {
	L_debug("chatlog: initializing index schema")

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			session_key TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create messages table: %w", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_key)`); err != nil {
		return fmt.Errorf("create idx_messages_session: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_messages_time ON messages(timestamp)`); err != nil {
		return fmt.Errorf("create idx_messages_time: %w", err)
	}
	return nil
}

// Index records one logged message under the given session key.
func (s *Store) Index(sessionKey, role, content string, ts time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO messages (id, session_key, timestamp, role, content)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.New().String(), sessionKey, ts.Unix(), role, content)
	if err != nil {
		return fmt.Errorf("chatlog: index message: %w", err)
	}
	return nil
}

// Recent returns the most recent indexed messages, newest first.
func (s *Store) Recent(limit int) ([]IndexedMessage, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`
		SELECT id, session_key, timestamp, role, content
		FROM messages
		ORDER BY timestamp DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("chatlog: query recent: %w", err)
	}
	defer rows.Close()

	var results []IndexedMessage
	for rows.Next() {
		var m IndexedMessage
		var ts int64
		if err := rows.Scan(&m.ID, &m.SessionKey, &ts, &m.Role, &m.Content); err != nil {
			return nil, fmt.Errorf("chatlog: scan row: %w", err)
		}
		m.Timestamp = time.Unix(ts, 0)
		results = append(results, m)
	}
	return results, rows.Err()
}

// Session returns all indexed messages for one session, oldest first.
func (s *Store) Session(sessionKey string) ([]IndexedMessage, error) {
	rows, err := s.db.Query(`
		SELECT id, session_key, timestamp, role, content
		FROM messages
		WHERE session_key = ?
		ORDER BY timestamp ASC
	`, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("chatlog: query session: %w", err)
	}
	defer rows.Close()

	var results []IndexedMessage
	for rows.Next() {
		var m IndexedMessage
		var ts int64
		if err := rows.Scan(&m.ID, &m.SessionKey, &ts, &m.Role, &m.Content); err != nil {
			return nil, fmt.Errorf("chatlog: scan row: %w", err)
		}
		m.Timestamp = time.Unix(ts, 0)
		results = append(results, m)
	}
	return results, rows.Err()
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}
