package voice

import (
	"sync"
	"time"
)

// Resources owns every live handle for one session: microphone stream,
// analyser tap, recorder, playback and pending timers. Handles leave through
// take-and-clear accessors so "release exactly once" is structural rather
// than caller discipline. No handle is shared across sessions.
type Resources struct {
	mu            sync.Mutex
	stream        Stream
	analyser      Analyser
	recorder      Recorder
	playback      Playback
	listenTimer   *time.Timer
	relistenTimer *time.Timer
}

// SetCapture installs the handles for one listen cycle. Any handles it
// replaces are released on the spot, so at most one capture is ever held and
// a superseded cycle cannot leak its stream.
func (r *Resources) SetCapture(s Stream, a Analyser, rec Recorder) {
	r.mu.Lock()
	oldStream, oldAnalyser, oldRecorder := r.stream, r.analyser, r.recorder
	r.stream = s
	r.analyser = a
	r.recorder = rec
	r.mu.Unlock()

	if oldRecorder != nil && oldRecorder.Recording() {
		oldRecorder.Stop()
	}
	if oldAnalyser != nil {
		_ = oldAnalyser.Close()
	}
	if oldStream != nil {
		oldStream.StopTracks()
	}
}

// TakeCapture removes and returns the capture handles. A second call returns
// nils.
func (r *Resources) TakeCapture() (Stream, Analyser, Recorder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, a, rec := r.stream, r.analyser, r.recorder
	r.stream, r.analyser, r.recorder = nil, nil, nil
	return s, a, rec
}

func (r *Resources) SetPlayback(p Playback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playback = p
}

func (r *Resources) TakePlayback() Playback {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.playback
	r.playback = nil
	return p
}

// SetListenTimer replaces the bounded-listen timer, stopping any previous one.
func (r *Resources) SetListenTimer(t *time.Timer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listenTimer != nil {
		r.listenTimer.Stop()
	}
	r.listenTimer = t
}

func (r *Resources) StopListenTimer() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listenTimer != nil {
		r.listenTimer.Stop()
		r.listenTimer = nil
	}
}

// SetRelistenTimer replaces the auto-relisten timer, stopping any previous one.
func (r *Resources) SetRelistenTimer(t *time.Timer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.relistenTimer != nil {
		r.relistenTimer.Stop()
	}
	r.relistenTimer = t
}

// ReleaseAll tears down everything still held: timers, recorder, microphone
// tracks, analyser tap and playback. Safe to call from any state and any
// number of times.
func (r *Resources) ReleaseAll() {
	r.mu.Lock()
	stream, analyser, recorder := r.stream, r.analyser, r.recorder
	playback := r.playback
	listen, relisten := r.listenTimer, r.relistenTimer
	r.stream, r.analyser, r.recorder = nil, nil, nil
	r.playback = nil
	r.listenTimer, r.relistenTimer = nil, nil
	r.mu.Unlock()

	if listen != nil {
		listen.Stop()
	}
	if relisten != nil {
		relisten.Stop()
	}
	if recorder != nil && recorder.Recording() {
		recorder.Stop()
	}
	if analyser != nil {
		_ = analyser.Close()
	}
	if stream != nil {
		stream.StopTracks()
	}
	if playback != nil {
		playback.Stop()
		playback.Release()
	}
}

// Live reports whether any device handle is still held. Used by tests and the
// idle check before re-acquisition.
func (r *Resources) Live() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stream != nil || r.analyser != nil || r.recorder != nil || r.playback != nil
}
