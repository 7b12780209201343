package voice

import (
	"context"
	"time"
)

// State is the single authority over what a session may do at any instant.
type State string

const (
	StateIdle       State = "idle"
	StateListening  State = "listening"
	StateProcessing State = "processing"
	StateSpeaking   State = "speaking"
)

// Turn is one transcript entry. Immutable once created.
type Turn struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Message is the role/content pair exchanged with the dialogue and save
// boundaries.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Stream is a live microphone stream. StopTracks releases the underlying
// device and is safe to call more than once.
type Stream interface {
	StopTracks()
}

// Analyser is a frequency tap wired onto a live stream. A closed tap returns
// a nil snapshot.
type Analyser interface {
	// Snapshot returns the current frequency-domain magnitudes, one byte per
	// bin in 0..255.
	Snapshot() []byte
	Close() error
}

// Recorder buffers audio from a stream into an in-memory clip.
type Recorder interface {
	Start() error
	// Stop ends buffering and returns the finished clip. Stopping an already
	// stopped recorder returns the same clip.
	Stop() []byte
	Recording() bool
}

// AudioBackend acquires microphone streams and constructs taps on them.
type AudioBackend interface {
	Acquire(ctx context.Context) (Stream, error)
	NewAnalyser(s Stream) (Analyser, error)
	NewRecorder(s Stream) (Recorder, error)
}

// Playback is one in-flight synthesized utterance.
type Playback interface {
	// Done resolves exactly once, on natural completion or playback error.
	Done() <-chan error
	// Stop interrupts audible output early.
	Stop()
	// Release frees the backing memory. The engine guarantees a single call.
	Release()
}

// Player starts playback of a finished synthesized clip.
type Player interface {
	Start(clip []byte) (Playback, error)
}

// Transcriber is the speech-to-text boundary.
type Transcriber interface {
	Transcribe(ctx context.Context, clip []byte) (string, error)
}

// Dialogue is the persona reply boundary.
type Dialogue interface {
	Reply(ctx context.Context, bookID, message string, history []Message) (string, error)
}

// Synthesizer is the text-to-speech boundary.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// TranscriptSaver persists a finished conversation. Invoked once, on
// user-initiated close with a non-empty transcript.
type TranscriptSaver interface {
	SaveTranscript(ctx context.Context, bookID string, messages []Message) error
}
