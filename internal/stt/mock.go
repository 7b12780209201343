package stt

import (
	"context"
	"sync"
)

// MockProvider returns a fixed transcript for local runs without API keys.
type MockProvider struct {
	Text string
	Err  error

	mu    sync.Mutex
	calls int
}

func NewMockProvider() *MockProvider {
	return &MockProvider{Text: "Tell me about this book."}
}

func (m *MockProvider) Transcribe(_ context.Context, _ []byte) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.Text, nil
}

func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
