package voice

import (
	"context"
	"strings"
	"time"
)

// processClip runs the three-stage pipeline for one turn: transcribe the
// clip, generate the persona reply, then synthesize and play it. At every
// suspension point the token is re-checked; results that arrive after close
// or after a newer listen cycle are discarded without mutating state. The
// processing guard admits at most one run per session and is always released.
func (s *Session) processClip(gen uint64, clip []byte) {
	if !s.beginProcessing() {
		return
	}
	defer s.endProcessing()

	s.setState(StateProcessing, statusProcessing)

	transcript, ok := s.transcribe(gen, clip)
	if !ok {
		return
	}
	if transcript == "" {
		s.setState(StateIdle, statusCouldNotHear)
		return
	}

	s.appendTurn("user", transcript)
	history := s.historyMessages()

	if s.tok.Stale(gen) {
		return
	}
	reply, ok := s.generate(gen, transcript, history)
	if !ok {
		return
	}

	s.appendTurn("assistant", reply)
	if s.metrics != nil {
		s.metrics.TurnsCompleted.Inc()
	}

	if s.tok.Stale(gen) {
		return
	}
	s.speak(gen, reply)
}

// transcribe submits the clip to the speech-to-text boundary. Returns
// ok=false when the turn must end silently (failure or stale continuation);
// an empty string with ok=true means the boundary heard nothing.
func (s *Session) transcribe(gen uint64, clip []byte) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	text, err := s.trans.Transcribe(ctx, clip)
	s.observeStage("transcribe", start)

	if s.tok.Stale(gen) {
		return "", false
	}
	if err != nil {
		s.countBoundaryError("transcribe")
		s.setState(StateIdle, statusWentWrong)
		return "", false
	}
	return strings.TrimSpace(text), true
}

// generate submits the transcript plus the full prior turn history to the
// dialogue boundary, scoped to this conversation's book persona.
func (s *Session) generate(gen uint64, transcript string, history []Message) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	reply, err := s.dlg.Reply(ctx, s.cfg.BookID, transcript, history)
	s.observeStage("generate", start)

	if s.tok.Stale(gen) {
		return "", false
	}
	if err != nil {
		s.countBoundaryError("generate")
		s.setState(StateIdle, statusWentWrong)
		return "", false
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		// An assistant turn is never appended with empty content.
		s.setState(StateIdle, statusWentWrong)
		return "", false
	}
	return reply, true
}
