package audio

import "testing"

// The device data callback runs on the audio thread and can land between a
// completed playback and the device actually stopping. Filling after the
// clip has been dropped must pad silence, never index past the buffer.
func TestPlaybackFillAfterRelease(t *testing.T) {
	pb := &pcmPlayback{
		data: []byte{1, 2, 3, 4},
		done: make(chan error, 1),
	}

	buf := make([]byte, 8)
	pb.fill(buf) // exhausts the clip and signals completion

	select {
	case err := <-pb.done:
		if err != nil {
			t.Fatalf("Done() = %v, want nil", err)
		}
	default:
		t.Fatalf("playback not signalled after exhausting the clip")
	}

	pb.Release()

	for i := range buf {
		buf[i] = 0xFF
	}
	pb.fill(buf)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("buf[%d] = %#x after released fill, want silence", i, b)
		}
	}
}

func TestPlaybackReleaseIdempotent(t *testing.T) {
	pb := &pcmPlayback{
		data: []byte{1, 2},
		done: make(chan error, 1),
	}
	pb.Release()
	pb.Release()
	pb.Stop()

	select {
	case <-pb.done:
	default:
		t.Fatalf("Done() not signalled by Release")
	}
}
