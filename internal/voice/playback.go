package voice

import (
	"context"
	"time"
)

// speak synthesizes the reply with the session's fixed persona voice, plays
// it to completion and releases the playback handle exactly once whether it
// ends naturally, fails, or the session closes underneath it. On natural
// completion the microphone re-arms after RelistenDelay unless the session
// was closed in the meantime.
func (s *Session) speak(gen uint64, text string) {
	s.setState(StateSpeaking, statusSpeaking)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.CallTimeout)
	start := time.Now()
	clip, err := s.synth.Synthesize(ctx, text, s.voiceID)
	cancel()
	s.observeStage("synthesize", start)

	if s.tok.Stale(gen) {
		return
	}
	if err != nil {
		s.countBoundaryError("synthesize")
		s.setState(StateIdle, statusTap)
		return
	}

	playback, err := s.player.Start(clip)
	if err != nil {
		s.countBoundaryError("playback")
		s.setState(StateIdle, statusTap)
		return
	}
	// Hand ownership to the resource set so teardown can stop audible output
	// if the user closes mid-speech.
	s.res.SetPlayback(playback)
	if s.tok.Closed() {
		// Teardown may have swept Resources just before the handle landed.
		if taken := s.res.TakePlayback(); taken != nil {
			taken.Stop()
			taken.Release()
		}
		return
	}

	playStart := time.Now()
	playErr := <-playback.Done()
	s.observeStage("playback", playStart)

	// Take-and-clear: whichever of us and teardown gets the handle releases
	// it; the other finds nil.
	if taken := s.res.TakePlayback(); taken != nil {
		taken.Release()
	}

	if s.tok.Stale(gen) {
		return
	}
	s.setState(StateIdle, statusTap)
	if playErr != nil {
		s.countBoundaryError("playback")
		return
	}
	s.scheduleRelisten(gen)
}

// scheduleRelisten arms the short post-speech delay after which listening
// resumes automatically. The timer callback re-checks the generation, so a
// close (or a fresh manual listen) during the delay provably prevents the
// re-entry.
func (s *Session) scheduleRelisten(gen uint64) {
	s.countEvent("relisten_scheduled")
	s.res.SetRelistenTimer(time.AfterFunc(s.cfg.RelistenDelay, func() {
		if s.tok.Stale(gen) {
			return
		}
		s.StartListening()
	}))
}
