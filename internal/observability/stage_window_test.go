package observability

import "testing"

func TestStageWindowSnapshot(t *testing.T) {
	w := NewStageWindow(8)
	w.Observe("transcribe", 500)
	w.Observe("transcribe", 700)
	w.Observe("transcribe", 900)

	snap := w.Snapshot()
	if snap.WindowSize != 8 {
		t.Fatalf("WindowSize = %d, want 8", snap.WindowSize)
	}
	if len(snap.Stages) != 1 {
		t.Fatalf("len(Stages) = %d, want 1", len(snap.Stages))
	}
	s := snap.Stages[0]
	if s.Stage != "transcribe" {
		t.Fatalf("Stage = %q, want %q", s.Stage, "transcribe")
	}
	if s.Samples != 3 {
		t.Fatalf("Samples = %d, want 3", s.Samples)
	}
	if s.LastMS != 900 {
		t.Fatalf("LastMS = %.2f, want 900", s.LastMS)
	}
	if s.AvgMS != 700 {
		t.Fatalf("AvgMS = %.2f, want 700", s.AvgMS)
	}
	if s.P50MS != 700 {
		t.Fatalf("P50MS = %.2f, want 700", s.P50MS)
	}
	if s.P95MS <= 700 || s.P95MS > 900 {
		t.Fatalf("P95MS = %.2f, want (700,900]", s.P95MS)
	}
}

func TestStageWindowWrapsRing(t *testing.T) {
	w := NewStageWindow(4)
	for i := 0; i < 10; i++ {
		w.Observe("generate", float64(100+i))
	}

	snap := w.Snapshot()
	if len(snap.Stages) != 1 {
		t.Fatalf("len(Stages) = %d, want 1", len(snap.Stages))
	}
	s := snap.Stages[0]
	if s.Samples != 4 {
		t.Fatalf("Samples = %d after wrap, want 4", s.Samples)
	}
	if s.LastMS != 109 {
		t.Fatalf("LastMS = %.2f, want 109", s.LastMS)
	}
}

func TestStageWindowIgnoresInvalid(t *testing.T) {
	w := NewStageWindow(4)
	w.Observe("", 100)
	w.Observe("transcribe", -5)

	if got := len(w.Snapshot().Stages); got != 0 {
		t.Fatalf("len(Stages) = %d for invalid samples, want 0", got)
	}
}
