// Package session persists chat transcripts as an append-only log keyed by
// session id, backed by SQLite.
package session

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"avevents/internal/domain"
)

// SQLiteStore implements the SessionStore port over a single chats table.
type SQLiteStore struct {
	db *sql.DB

	insertMessage *sql.Stmt
	selectHistory *sql.Stmt
}

// Open opens (creating if needed) the chat history database at path.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS chats (
			session_id TEXT NOT NULL,
			role       TEXT NOT NULL,
			content    TEXT NOT NULL,
			timestamp  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_chats_session ON chats(session_id, timestamp);
	`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error
	s.insertMessage, err = s.db.Prepare(`
		INSERT INTO chats (session_id, role, content, timestamp) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	s.selectHistory, err = s.db.Prepare(`
		SELECT role, content, timestamp FROM chats WHERE session_id = ? ORDER BY timestamp, rowid
	`)
	if err != nil {
		return fmt.Errorf("prepare select: %w", err)
	}
	return nil
}

// SaveMessage appends one chat turn to the session's log.
func (s *SQLiteStore) SaveMessage(ctx context.Context, sessionID, role, content string) error {
	_, err := s.insertMessage.ExecContext(ctx, sessionID, role, content, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

// LoadHistory returns the session's transcript in chronological order.
func (s *SQLiteStore) LoadHistory(ctx context.Context, sessionID string) ([]domain.Message, error) {
	rows, err := s.selectHistory.QueryContext(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		var ts string
		if err := rows.Scan(&m.Role, &m.Content, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.At, _ = time.Parse(time.RFC3339Nano, ts)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s.insertMessage != nil {
		s.insertMessage.Close()
	}
	if s.selectHistory != nil {
		s.selectHistory.Close()
	}
	return s.db.Close()
}

// NewSessionID mints a random session identifier.
func NewSessionID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return "SES-" + hex.EncodeToString(b)
}
