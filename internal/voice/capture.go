package voice

import (
	"context"
	"time"
)

// StartListening acquires the microphone, wires the analyser tap and the
// recorder onto it and begins buffering a clip. It is a no-op if the session
// is closed, a pipeline run is in flight, or a capture is already live.
// Microphone denial lands back in idle with a status line; there is no
// automatic retry.
func (s *Session) StartListening() {
	s.startMu.Lock()
	defer s.startMu.Unlock()
	if s.tok.Closed() || s.isProcessing() || s.State() == StateListening {
		return
	}
	gen := s.tok.Bump()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.AcquireTimeout)
	defer cancel()
	stream, err := s.backend.Acquire(ctx)
	if err != nil {
		s.countEvent("mic_denied")
		s.setState(StateIdle, statusMicDenied)
		return
	}
	// The permission prompt is a suspension point: the user may have closed
	// the session while it was up.
	if s.tok.Stale(gen) {
		stream.StopTracks()
		return
	}

	analyser, err := s.backend.NewAnalyser(stream)
	if err != nil {
		stream.StopTracks()
		s.setState(StateIdle, statusMicDenied)
		return
	}
	recorder, err := s.backend.NewRecorder(stream)
	if err != nil {
		_ = analyser.Close()
		stream.StopTracks()
		s.setState(StateIdle, statusMicDenied)
		return
	}

	s.res.SetCapture(stream, analyser, recorder)
	if err := recorder.Start(); err != nil {
		s.releaseCapture()
		s.setState(StateIdle, statusMicDenied)
		return
	}

	s.setState(StateListening, statusListening)
	s.countEvent("listen_started")
	go s.runLevelMeter(gen, analyser)

	// Bounded listen: capture may not run longer than MaxListen regardless of
	// user action.
	s.res.SetListenTimer(time.AfterFunc(s.cfg.MaxListen, func() {
		s.finishListening(gen)
	}))
}

// StopListening ends the current capture early (user tap or natural stop).
func (s *Session) StopListening() {
	s.finishListening(s.tok.Gen())
}

// finishListening stops buffering, releases the microphone immediately and
// either discards a near-silent clip or hands the clip to the pipeline.
func (s *Session) finishListening(gen uint64) {
	if s.tok.Stale(gen) {
		return
	}
	s.res.StopListenTimer()

	stream, analyser, recorder := s.res.TakeCapture()
	if recorder == nil {
		return
	}
	clip := recorder.Stop()
	s.publishLevel(0)
	if analyser != nil {
		_ = analyser.Close()
	}
	if stream != nil {
		stream.StopTracks()
	}

	if s.tok.Closed() {
		return
	}
	if len(clip) < s.cfg.MinClipBytes {
		// Noise or silence, not speech: skip the pipeline entirely.
		s.countEvent("clip_discarded_short")
		s.setState(StateIdle, statusCouldNotHear)
		return
	}
	go s.processClip(gen, clip)
}

func (s *Session) releaseCapture() {
	stream, analyser, recorder := s.res.TakeCapture()
	if recorder != nil && recorder.Recording() {
		recorder.Stop()
	}
	if analyser != nil {
		_ = analyser.Close()
	}
	if stream != nil {
		stream.StopTracks()
	}
}
