// Package chat persists finished voice conversations alongside the text chat
// history, one session per reader and book.
package chat

import (
	"context"
	"time"

	"github.com/oromei/bookvoice/internal/voice"
)

// MessageRecord is one persisted conversation message.
type MessageRecord struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Store saves conversation transcripts. Empty messages are skipped, and the
// saved records come back in insertion order.
type Store interface {
	SaveConversation(ctx context.Context, bookID string, messages []voice.Message) ([]MessageRecord, error)
	Close() error
}
