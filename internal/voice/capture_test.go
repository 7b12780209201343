package voice

import (
	"sync"
	"testing"
)

// The relisten timer and a user tap can both call StartListening at the same
// moment. Only one capture may ever be live, and whatever a superseded cycle
// acquired must still be reachable by Close.
func TestConcurrentStartListeningHoldsSingleCapture(t *testing.T) {
	for i := 0; i < 25; i++ {
		f := newFixture(nil)

		var wg sync.WaitGroup
		for j := 0; j < 2; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				f.session.StartListening()
			}()
		}
		wg.Wait()

		if got := f.backend.LiveStreams(); got > 1 {
			t.Fatalf("iteration %d: LiveStreams() = %d after concurrent listens, want at most 1", i, got)
		}
		f.session.Close()
		if got := f.backend.LiveStreams(); got != 0 {
			t.Fatalf("iteration %d: LiveStreams() = %d after Close, want 0", i, got)
		}
	}
}

func TestStartListeningWhileListeningIsNoOp(t *testing.T) {
	f := newFixture(nil)
	defer f.session.Close()

	f.session.StartListening()
	f.session.StartListening()

	if got := f.backend.Acquired(); got != 1 {
		t.Fatalf("Acquired() = %d after repeated listen, want 1", got)
	}
	if got := f.backend.LiveStreams(); got != 1 {
		t.Fatalf("LiveStreams() = %d, want 1", got)
	}
}
