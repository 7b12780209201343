package voice

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oromei/bookvoice/internal/observability"
)

// Status lines surfaced to the UI. Failures never cross the session boundary
// as errors; they become one of these plus a state transition.
const (
	statusTap          = "Tap to speak"
	statusListening    = "Listening..."
	statusProcessing   = "Processing..."
	statusSpeaking     = "Speaking..."
	statusMicDenied    = "Microphone access denied"
	statusCouldNotHear = "Could not hear you. Tap to try again."
	statusWentWrong    = "Something went wrong. Tap to try again."
)

// Config bounds one voice session.
type Config struct {
	BookID     string
	BookAuthor string

	// MaxListen forces capture to stop even if the user never taps again.
	MaxListen time.Duration
	// RelistenDelay is the pause between playback ending and the microphone
	// re-arming automatically.
	RelistenDelay time.Duration
	// MinClipBytes is the silence threshold: smaller clips never reach the
	// transcription boundary.
	MinClipBytes int

	AcquireTimeout time.Duration
	CallTimeout    time.Duration
	SaveTimeout    time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxListen <= 0 {
		c.MaxListen = 15 * time.Second
	}
	if c.RelistenDelay <= 0 {
		c.RelistenDelay = 500 * time.Millisecond
	}
	if c.MinClipBytes <= 0 {
		c.MinClipBytes = 1000
	}
	if c.AcquireTimeout <= 0 {
		c.AcquireTimeout = 10 * time.Second
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 30 * time.Second
	}
	if c.SaveTimeout <= 0 {
		c.SaveTimeout = 5 * time.Second
	}
	return c
}

// Deps are the session's collaborators. Audio, Player, Transcriber, Dialogue
// and Synthesizer are required; Saver, Metrics and Notify are optional.
type Deps struct {
	Audio       AudioBackend
	Player      Player
	Transcriber Transcriber
	Dialogue    Dialogue
	Synthesizer Synthesizer
	Saver       TranscriptSaver
	Metrics     *observability.Metrics
	Notify      func(Event)
}

// Session is one turn-based spoken conversation with a book persona. Exactly
// one state is active at a time; the session owns its device handles
// exclusively and a single idempotent teardown is reachable from any state.
type Session struct {
	cfg     Config
	backend AudioBackend
	player  Player
	trans   Transcriber
	dlg     Dialogue
	synth   Synthesizer
	saver   TranscriptSaver
	metrics *observability.Metrics
	notify  func(Event)

	voiceID string

	tok lifeToken
	res Resources

	// startMu serializes listen starts: the relisten timer and a user tap can
	// race into StartListening at the same moment.
	startMu sync.Mutex

	mu         sync.Mutex
	state      State
	status     string
	turns      []Turn
	processing bool
}

func NewSession(cfg Config, deps Deps) *Session {
	cfg = cfg.withDefaults()
	s := &Session{
		cfg:     cfg,
		backend: deps.Audio,
		player:  deps.Player,
		trans:   deps.Transcriber,
		dlg:     deps.Dialogue,
		synth:   deps.Synthesizer,
		saver:   deps.Saver,
		metrics: deps.Metrics,
		notify:  deps.Notify,
		voiceID: SelectVoiceForBook(cfg.BookAuthor, cfg.BookID),
		state:   StateIdle,
		status:  statusTap,
	}
	if s.metrics != nil {
		s.metrics.ActiveSessions.Inc()
		s.metrics.SessionEvents.WithLabelValues("created").Inc()
	}
	return s
}

// VoiceID is the persona voice fixed for the whole conversation.
func (s *Session) VoiceID() string { return s.voiceID }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Transcript returns a copy of the turns accumulated so far.
func (s *Session) Transcript() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Closed reports whether the session has been torn down.
func (s *Session) Closed() bool { return s.tok.Closed() }

// Toggle is the user's tap: stop capture while listening, start it while
// idle. Taps during processing or speaking are ignored.
func (s *Session) Toggle() {
	switch s.State() {
	case StateListening:
		s.StopListening()
	case StateIdle:
		go s.StartListening()
	}
}

// Close is the user-initiated teardown. It releases every held resource and
// then flushes the accumulated transcript to the persistence boundary. Safe
// to call from any state; repeated calls are no-ops.
func (s *Session) Close() {
	turns := s.Transcript()
	if !s.teardown() {
		return
	}
	s.countEvent("closed")
	if s.saver == nil || len(turns) == 0 {
		return
	}

	msgs := make([]Message, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, Message{Role: t.Role, Content: t.Content})
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.SaveTimeout)
	defer cancel()
	// Fire and forget: a failed save never reopens the session.
	if err := s.saver.SaveTranscript(ctx, s.cfg.BookID, msgs); err != nil {
		s.countBoundaryError("save")
	}
}

// Teardown releases everything without flushing the transcript, for host
// disposal where no user action occurred.
func (s *Session) Teardown() {
	if s.teardown() {
		s.countEvent("torn_down")
	}
}

func (s *Session) teardown() bool {
	first := s.tok.Close()

	s.mu.Lock()
	s.processing = false
	s.mu.Unlock()

	// Audible playback is stopped eagerly here rather than allowed to drain:
	// a closed session must go silent immediately.
	s.res.ReleaseAll()

	if first {
		s.mu.Lock()
		s.state = StateIdle
		s.status = statusTap
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.ActiveSessions.Dec()
		}
	}
	return first
}

// setState mutates state and status together and publishes both. Dropped
// silently once the session is closed.
func (s *Session) setState(state State, status string) {
	if s.tok.Closed() {
		return
	}
	s.mu.Lock()
	s.state = state
	s.status = status
	s.mu.Unlock()
	s.publish(Event{Type: EventState, State: state, Status: status})
}

func (s *Session) appendTurn(role, content string) Turn {
	turn := Turn{
		ID:        role + "-" + uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	s.mu.Lock()
	s.turns = append(s.turns, turn)
	s.mu.Unlock()
	s.publish(Event{Type: EventTurn, Turn: &turn})
	return turn
}

func (s *Session) historyMessages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, 0, len(s.turns))
	for _, t := range s.turns {
		out = append(out, Message{Role: t.Role, Content: t.Content})
	}
	return out
}

func (s *Session) beginProcessing() bool {
	if s.tok.Closed() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processing {
		return false
	}
	s.processing = true
	return true
}

func (s *Session) endProcessing() {
	s.mu.Lock()
	s.processing = false
	s.mu.Unlock()
}

func (s *Session) isProcessing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

func (s *Session) publish(evt Event) {
	if s.notify != nil {
		s.notify(evt)
	}
}

func (s *Session) publishLevel(level float64) {
	s.publish(Event{Type: EventLevel, Level: level})
}

func (s *Session) countEvent(event string) {
	if s.metrics != nil {
		s.metrics.SessionEvents.WithLabelValues(event).Inc()
	}
}

func (s *Session) countBoundaryError(boundary string) {
	if s.metrics != nil {
		s.metrics.BoundaryErrors.WithLabelValues(boundary).Inc()
	}
}

func (s *Session) observeStage(stage string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveStage(stage, time.Since(start))
	}
}
