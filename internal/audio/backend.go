package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/oromei/bookvoice/internal/voice"
)

// analyserBins is the number of frequency-style magnitude bins exposed to the
// level meter.
const analyserBins = 32

// recentSampleBytes bounds the window the analyser reads from.
const recentSampleBytes = 4096

// Backend implements voice.AudioBackend on the default system microphone via
// malgo. Each Acquire owns a fresh device context so StopTracks fully
// releases the hardware.
type Backend struct {
	sampleRate int
}

func NewBackend(sampleRate int) *Backend {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &Backend{sampleRate: sampleRate}
}

func (b *Backend) Acquire(_ context.Context) (voice.Stream, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}

	st := &captureStream{
		mctx:       mctx,
		sampleRate: b.sampleRate,
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = 1
	cfg.SampleRate = uint32(b.sampleRate)

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			st.push(input)
		},
	}

	dev, err := malgo.InitDevice(mctx.Context, cfg, callbacks)
	if err != nil {
		mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("open microphone: %w", err)
	}
	st.dev = dev

	if err := dev.Start(); err != nil {
		dev.Uninit()
		mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("start microphone: %w", err)
	}
	return st, nil
}

func (b *Backend) NewAnalyser(s voice.Stream) (voice.Analyser, error) {
	cs, ok := s.(*captureStream)
	if !ok {
		return nil, fmt.Errorf("analyser: unexpected stream type %T", s)
	}
	return &analyserTap{stream: cs}, nil
}

func (b *Backend) NewRecorder(s voice.Stream) (voice.Recorder, error) {
	cs, ok := s.(*captureStream)
	if !ok {
		return nil, fmt.Errorf("recorder: unexpected stream type %T", s)
	}
	return &pcmRecorder{stream: cs}, nil
}

// captureStream is one live microphone acquisition. The data callback runs
// on the audio thread; all shared state is behind the mutex.
type captureStream struct {
	mctx       *malgo.AllocatedContext
	dev        *malgo.Device
	sampleRate int

	mu        sync.Mutex
	stopped   bool
	recording bool
	buf       []byte
	recent    []byte
}

func (s *captureStream) push(input []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.recent = append(s.recent, input...)
	if len(s.recent) > recentSampleBytes {
		s.recent = s.recent[len(s.recent)-recentSampleBytes:]
	}
	if s.recording {
		s.buf = append(s.buf, input...)
	}
}

func (s *captureStream) StopTracks() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	dev, mctx := s.dev, s.mctx
	s.dev, s.mctx = nil, nil
	s.mu.Unlock()

	if dev != nil {
		_ = dev.Stop()
		dev.Uninit()
	}
	if mctx != nil {
		_ = mctx.Uninit()
		mctx.Free()
	}
}

// analyserTap reduces the most recent PCM window to coarse magnitude bins.
type analyserTap struct {
	mu     sync.Mutex
	stream *captureStream
	closed bool
}

func (a *analyserTap) Snapshot() []byte {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	st := a.stream
	a.mu.Unlock()

	st.mu.Lock()
	recent := append([]byte(nil), st.recent...)
	st.mu.Unlock()

	samples := len(recent) / 2
	if samples == 0 {
		return make([]byte, analyserBins)
	}

	bins := make([]byte, analyserBins)
	perBin := samples / analyserBins
	if perBin == 0 {
		perBin = 1
	}
	for bin := 0; bin < analyserBins; bin++ {
		start := bin * perBin
		if start >= samples {
			break
		}
		end := start + perBin
		if end > samples {
			end = samples
		}
		sum := 0
		for i := start; i < end; i++ {
			v := int(int16(uint16(recent[2*i]) | uint16(recent[2*i+1])<<8))
			if v < 0 {
				v = -v
			}
			sum += v
		}
		avg := sum / (end - start)
		bins[bin] = byte(avg >> 7) // 0..32767 -> 0..255
	}
	return bins
}

func (a *analyserTap) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return nil
}

// pcmRecorder buffers samples on the stream and wraps the finished clip as
// WAV for the transcription boundary.
type pcmRecorder struct {
	mu     sync.Mutex
	stream *captureStream
	clip   []byte
	done   bool
}

func (r *pcmRecorder) Start() error {
	st := r.stream
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.stopped {
		return fmt.Errorf("recorder: stream already stopped")
	}
	st.buf = st.buf[:0]
	st.recording = true
	return nil
}

func (r *pcmRecorder) Stop() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return r.clip
	}
	r.done = true

	st := r.stream
	st.mu.Lock()
	st.recording = false
	pcm := append([]byte(nil), st.buf...)
	rate := st.sampleRate
	st.mu.Unlock()

	r.clip = EncodeWAVPCM16LE(pcm, rate)
	return r.clip
}

func (r *pcmRecorder) Recording() bool {
	st := r.stream
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.recording
}
