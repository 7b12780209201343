package audio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/oromei/bookvoice/internal/voice"
)

// PCMPlayer implements voice.Player for raw PCM16LE mono clips (the
// synthesis boundary is configured for pcm output). WAV-wrapped clips are
// unwrapped transparently.
type PCMPlayer struct {
	sampleRate int
}

func NewPCMPlayer(sampleRate int) *PCMPlayer {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &PCMPlayer{sampleRate: sampleRate}
}

func (p *PCMPlayer) Start(clip []byte) (voice.Playback, error) {
	pcm, rate, err := SplitWAVPCM16LE(clip, p.sampleRate)
	if err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("playback: empty clip")
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}

	pb := &pcmPlayback{
		mctx: mctx,
		data: pcm,
		done: make(chan error, 1),
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = 1
	cfg.SampleRate = uint32(rate)

	callbacks := malgo.DeviceCallbacks{
		Data: func(output, _ []byte, _ uint32) {
			pb.fill(output)
		},
	}

	dev, err := malgo.InitDevice(mctx.Context, cfg, callbacks)
	if err != nil {
		mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("open playback device: %w", err)
	}
	pb.dev = dev

	if err := dev.Start(); err != nil {
		dev.Uninit()
		mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("start playback: %w", err)
	}
	return pb, nil
}

type pcmPlayback struct {
	mctx *malgo.AllocatedContext
	dev  *malgo.Device
	done chan error

	mu       sync.Mutex
	data     []byte
	offset   int
	finished bool
	released bool
}

func (pb *pcmPlayback) Done() <-chan error { return pb.done }

// fill runs on the audio thread: it copies the next slice of the clip into
// the device buffer and pads the tail with silence, signalling completion
// once the clip is exhausted.
func (pb *pcmPlayback) fill(output []byte) {
	pb.mu.Lock()
	// Release may have dropped the clip while a callback was in flight;
	// offset can then exceed the (now empty) data.
	var n int
	if pb.offset < len(pb.data) {
		n = copy(output, pb.data[pb.offset:])
		pb.offset += n
	}
	exhausted := pb.offset >= len(pb.data)
	pb.mu.Unlock()

	for i := n; i < len(output); i++ {
		output[i] = 0
	}
	if exhausted {
		pb.finish(nil)
	}
}

func (pb *pcmPlayback) finish(err error) {
	pb.mu.Lock()
	if pb.finished {
		pb.mu.Unlock()
		return
	}
	pb.finished = true
	pb.mu.Unlock()
	pb.done <- err
}

func (pb *pcmPlayback) Stop() {
	pb.finish(nil)
	pb.mu.Lock()
	dev := pb.dev
	pb.mu.Unlock()
	if dev != nil {
		_ = dev.Stop()
	}
}

// Release frees the device and the clip memory. The session's resource set
// guarantees it is reached exactly once.
func (pb *pcmPlayback) Release() {
	pb.finish(nil)

	pb.mu.Lock()
	if pb.released {
		pb.mu.Unlock()
		return
	}
	pb.released = true
	dev, mctx := pb.dev, pb.mctx
	pb.dev, pb.mctx = nil, nil
	pb.data = nil
	pb.mu.Unlock()

	if dev != nil {
		_ = dev.Stop()
		dev.Uninit()
	}
	if mctx != nil {
		_ = mctx.Uninit()
		mctx.Free()
	}
}
