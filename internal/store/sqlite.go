package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jaeyunk/partner/internal/domain"
	_ "modernc.org/sqlite"
)

// ChatStore persists the conversation transcript in SQLite. The transcript
// is append-heavy and queried by recency, which fits rows better than the
// per-domain JSON documents of the gateway.
type ChatStore struct {
	db *sql.DB
}

// NewChatStore opens (creating if needed) the chat history database.
func NewChatStore(dbPath string) (*ChatStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode for better concurrency with external readers.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &ChatStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *ChatStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		role TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT 'text',
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_created ON messages(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *ChatStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *ChatStore) Close() error {
	return s.db.Close()
}

// AppendMessage stores one transcript row. A missing ID gets a fresh UUID.
func (s *ChatStore) AppendMessage(ctx context.Context, m *domain.ChatMessage) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	if m.Kind == "" {
		m.Kind = "text"
	}

	query := `INSERT INTO messages (id, role, kind, content, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, m.ID, m.Role, m.Kind, m.Content, m.CreatedAt.Unix()); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// RecentMessages returns up to limit transcript rows, oldest first.
func (s *ChatStore) RecentMessages(ctx context.Context, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, role, kind, content, created_at
		FROM (
			SELECT id, role, kind, content, created_at
			FROM messages ORDER BY created_at DESC, id DESC LIMIT ?
		) ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.Role, &m.Kind, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		m.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, m)
	}
	return out, rows.Err()
}
