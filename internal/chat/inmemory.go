package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oromei/bookvoice/internal/voice"
)

// InMemoryStore is a simple in-process transcript store for local/dev use.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]string          // book id -> session id
	messages map[string][]MessageRecord // session id -> messages
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]string),
		messages: make(map[string][]MessageRecord),
	}
}

func (s *InMemoryStore) SaveConversation(_ context.Context, bookID string, messages []voice.Message) ([]MessageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionID, ok := s.sessions[bookID]
	if !ok {
		sessionID = uuid.NewString()
		s.sessions[bookID] = sessionID
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
		s.messages[sessionID] = append(s.messages[sessionID], rec)
		saved = append(saved, rec)
	}
	return saved, nil
}

// Conversation returns the stored messages for a book in insertion order.
func (s *InMemoryStore) Conversation(bookID string) []MessageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessionID, ok := s.sessions[bookID]
	if !ok {
		return nil
	}
	return append([]MessageRecord(nil), s.messages[sessionID]...)
}

func (s *InMemoryStore) Close() error { return nil }
