package voice

import "testing"

func TestLifeTokenCloseOnce(t *testing.T) {
	var tok lifeToken
	if tok.Closed() {
		t.Fatalf("Closed() = true before Close")
	}
	if !tok.Close() {
		t.Fatalf("first Close() = false, want true")
	}
	if tok.Close() {
		t.Fatalf("second Close() = true, want false")
	}
	if !tok.Closed() {
		t.Fatalf("Closed() = false after Close")
	}
}

func TestLifeTokenGenerations(t *testing.T) {
	var tok lifeToken
	g1 := tok.Bump()
	if tok.Stale(g1) {
		t.Fatalf("Stale(current) = true, want false")
	}

	g2 := tok.Bump()
	if g2 <= g1 {
		t.Fatalf("Bump() = %d, want > %d", g2, g1)
	}
	if !tok.Stale(g1) {
		t.Fatalf("Stale(old gen) = false, want true")
	}
	if tok.Stale(g2) {
		t.Fatalf("Stale(current) = true, want false")
	}
}

func TestLifeTokenCloseStalesEveryGeneration(t *testing.T) {
	var tok lifeToken
	gen := tok.Bump()
	tok.Close()
	if !tok.Stale(gen) {
		t.Fatalf("Stale(current) = false after Close, want true")
	}
	if !tok.Stale(tok.Gen()) {
		t.Fatalf("Stale(Gen()) = false after Close, want true")
	}
}
