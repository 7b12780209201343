package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oromei/bookvoice/internal/voice"
)

// PostgresStore persists conversations in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			id TEXT PRIMARY KEY,
			book_id TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES chat_sessions(id),
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_session_created ON chat_messages (session_id, created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

// Pool exposes the connection pool so read-only consumers, like the book
// catalog, can share it.
func (s *PostgresStore) Pool() *pgxpool.Pool { return s.pool }

func (s *PostgresStore) SaveConversation(ctx context.Context, bookID string, messages []voice.Message) ([]MessageRecord, error) {
	sessionID, err := s.getOrCreateSession(ctx, bookID)
	if err != nil {
		return nil, err
	}

	saved := make([]MessageRecord, 0, len(messages))
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		rec := MessageRecord{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Role:      msg.Role,
			Content:   content,
			CreatedAt: time.Now().UTC(),
		}
		_, err := s.pool.Exec(ctx,
			`INSERT INTO chat_messages (id, session_id, role, content, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			rec.ID, rec.SessionID, rec.Role, rec.Content, rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("save message: %w", err)
		}
		saved = append(saved, rec)
	}
	return saved, nil
}

func (s *PostgresStore) getOrCreateSession(ctx context.Context, bookID string) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO chat_sessions (id, book_id, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (book_id) DO UPDATE SET updated_at = now()
		 RETURNING id`,
		uuid.NewString(), bookID,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("get or create session: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
