// Package dialogue generates the book persona's replies.
package dialogue

import (
	"context"

	"github.com/oromei/bookvoice/internal/voice"
)

// BookContext identifies the persona the reply is spoken in.
type BookContext struct {
	ID     string
	Title  string
	Author string
}

// Provider produces one assistant reply for the reader's message, given the
// prior conversation history in chronological order.
type Provider interface {
	Reply(ctx context.Context, book BookContext, message string, history []voice.Message) (string, error)
}
