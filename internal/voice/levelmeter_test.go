package voice

import (
	"sync"
	"testing"
	"time"
)

func TestLevelMeterPublishesWhileListening(t *testing.T) {
	var mu sync.Mutex
	var levels []float64
	f := newFixture(nil)
	f.session.notify = func(ev Event) {
		if ev.Type != EventLevel {
			return
		}
		mu.Lock()
		levels = append(levels, ev.Level)
		mu.Unlock()
	}
	defer f.session.Close()

	f.session.StartListening()
	waitFor(t, "level samples", func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, l := range levels {
			if l > 0 {
				return true
			}
		}
		return false
	})

	f.session.StopListening()
	waitFor(t, "zero level on stop", func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, l := range levels {
			if l == 0 {
				return true
			}
		}
		return false
	})

	mu.Lock()
	defer mu.Unlock()
	for _, l := range levels {
		if l < 0 || l > 1 {
			t.Fatalf("level %v outside [0,1]", l)
		}
	}
}

func TestLevelMeterStopsAfterCycleEnds(t *testing.T) {
	var mu sync.Mutex
	var count int
	f := newFixture(nil)
	f.session.notify = func(ev Event) {
		if ev.Type != EventLevel {
			return
		}
		mu.Lock()
		count++
		mu.Unlock()
	}
	defer f.session.Close()

	f.session.StartListening()
	f.session.StopListening()
	waitFor(t, "turn to finish", func() bool { return f.session.State() == StateIdle })

	// Let any tick already in flight land before sampling the count.
	time.Sleep(2 * meterInterval)
	mu.Lock()
	settled := count
	mu.Unlock()
	time.Sleep(3 * meterInterval)
	mu.Lock()
	after := count
	mu.Unlock()
	if after != settled {
		t.Fatalf("level events kept arriving after the cycle ended: %d -> %d", settled, after)
	}
}
