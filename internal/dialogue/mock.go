package dialogue

import (
	"context"
	"fmt"
	"sync"

	"github.com/oromei/bookvoice/internal/voice"
)

// MockProvider echoes a canned persona reply for local runs without API keys.
type MockProvider struct {
	Err error

	mu    sync.Mutex
	calls int
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Reply(_ context.Context, book BookContext, message string, _ []voice.Message) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	title := book.Title
	if title == "" {
		title = "this literary work"
	}
	return fmt.Sprintf("As %s, I heard you say: %s", title, message), nil
}

func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
