package voice

import (
	"context"
	"sync"
	"time"
)

// Mock devices and boundaries, used by tests and as the fallback backend
// when no audio hardware or remote credentials are available.

// MockBackend fabricates capture streams that record a fixed clip.
type MockBackend struct {
	mu         sync.Mutex
	Clip       []byte
	AcquireErr error
	streams    []*MockStream
}

func NewMockBackend(clip []byte) *MockBackend {
	return &MockBackend{Clip: clip}
}

func (b *MockBackend) Acquire(_ context.Context) (Stream, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.AcquireErr != nil {
		return nil, b.AcquireErr
	}
	st := &MockStream{}
	b.streams = append(b.streams, st)
	return st, nil
}

func (b *MockBackend) NewAnalyser(s Stream) (Analyser, error) {
	return &mockAnalyser{stream: s.(*MockStream)}, nil
}

func (b *MockBackend) NewRecorder(s Stream) (Recorder, error) {
	b.mu.Lock()
	clip := b.Clip
	b.mu.Unlock()
	return &mockRecorder{clip: clip}, nil
}

// LiveStreams counts acquired streams whose tracks were never stopped.
func (b *MockBackend) LiveStreams() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, st := range b.streams {
		if !st.Stopped() {
			n++
		}
	}
	return n
}

func (b *MockBackend) Acquired() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.streams)
}

type MockStream struct {
	mu      sync.Mutex
	stopped bool
}

func (s *MockStream) StopTracks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

func (s *MockStream) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

type mockAnalyser struct {
	mu     sync.Mutex
	stream *MockStream
	closed bool
}

func (a *mockAnalyser) Snapshot() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	// Flat mid-scale spectrum: normalizes to ~0.5.
	return []byte{128, 128, 128, 128, 128, 128, 128, 128}
}

func (a *mockAnalyser) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

type mockRecorder struct {
	mu        sync.Mutex
	clip      []byte
	recording bool
}

func (r *mockRecorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = true
	return nil
}

func (r *mockRecorder) Stop() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = false
	return r.clip
}

func (r *mockRecorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}

// MockPlayer fabricates playback handles. With FinishAfter zero, playback
// completes immediately; otherwise the handle resolves after the delay or
// when the test finishes it by hand.
type MockPlayer struct {
	mu          sync.Mutex
	FinishAfter time.Duration
	StartErr    error
	Manual      bool
	playbacks   []*MockPlayback
}

func (p *MockPlayer) Start(clip []byte) (Playback, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.StartErr != nil {
		return nil, p.StartErr
	}
	pb := &MockPlayback{clip: clip, done: make(chan error, 1)}
	p.playbacks = append(p.playbacks, pb)
	if !p.Manual {
		delay := p.FinishAfter
		if delay <= 0 {
			pb.Finish(nil)
		} else {
			go func() {
				time.Sleep(delay)
				pb.Finish(nil)
			}()
		}
	}
	return pb, nil
}

func (p *MockPlayer) Playbacks() []*MockPlayback {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*MockPlayback, len(p.playbacks))
	copy(out, p.playbacks)
	return out
}

type MockPlayback struct {
	mu       sync.Mutex
	clip     []byte
	done     chan error
	finished bool
	stopped  bool
	released int
}

func (pb *MockPlayback) Done() <-chan error { return pb.done }

func (pb *MockPlayback) Finish(err error) {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if pb.finished {
		return
	}
	pb.finished = true
	pb.done <- err
}

func (pb *MockPlayback) Stop() {
	pb.mu.Lock()
	pb.stopped = true
	pb.mu.Unlock()
	pb.Finish(nil)
}

func (pb *MockPlayback) Release() {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.released++
}

func (pb *MockPlayback) ReleaseCount() int {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return pb.released
}

func (pb *MockPlayback) StoppedEarly() bool {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return pb.stopped
}

// MockTranscriber returns a fixed transcript.
type MockTranscriber struct {
	mu    sync.Mutex
	Text  string
	Err   error
	Delay time.Duration
	calls int
	clips [][]byte
}

func (m *MockTranscriber) Transcribe(ctx context.Context, clip []byte) (string, error) {
	m.mu.Lock()
	m.calls++
	m.clips = append(m.clips, clip)
	text, err, delay := m.Text, m.Err, m.Delay
	m.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return text, err
}

func (m *MockTranscriber) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockDialogue returns a fixed persona reply.
type MockDialogue struct {
	mu          sync.Mutex
	Text        string
	Err         error
	Delay       time.Duration
	calls       int
	lastHistory []Message
}

func (m *MockDialogue) Reply(ctx context.Context, _ string, _ string, history []Message) (string, error) {
	m.mu.Lock()
	m.calls++
	m.lastHistory = append([]Message(nil), history...)
	text, err, delay := m.Text, m.Err, m.Delay
	m.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return text, err
}

func (m *MockDialogue) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockDialogue) LastHistory() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.lastHistory...)
}

// MockSynthesizer returns a fixed audio clip.
type MockSynthesizer struct {
	mu    sync.Mutex
	Audio []byte
	Err   error
	calls int
}

func (m *MockSynthesizer) Synthesize(_ context.Context, _ string, _ string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.Audio, m.Err
}

func (m *MockSynthesizer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockSaver records flushed transcripts.
type MockSaver struct {
	mu      sync.Mutex
	Err     error
	saved   [][]Message
	bookIDs []string
}

func (m *MockSaver) SaveTranscript(_ context.Context, bookID string, messages []Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, append([]Message(nil), messages...))
	m.bookIDs = append(m.bookIDs, bookID)
	return m.Err
}

func (m *MockSaver) Saved() [][]Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]Message, len(m.saved))
	copy(out, m.saved)
	return out
}
