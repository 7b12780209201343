package tts

import (
	"context"
	"sync"
)

// MockProvider returns a short silent clip for local runs without API keys.
type MockProvider struct {
	Audio []byte
	Err   error

	mu    sync.Mutex
	calls int
}

func NewMockProvider() *MockProvider {
	// Half a second of silence at 16 kHz PCM16LE.
	return &MockProvider{Audio: make([]byte, 16000)}
}

func (m *MockProvider) Synthesize(_ context.Context, _, _ string) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Audio, nil
}

func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
