package voice

import "sync"

// lifeToken is the session's cooperative cancellation token: a closed flag
// that is never cleared once set, plus a generation counter so continuations
// left over from an earlier listen cycle are detected and discarded, not just
// ones from a closed session.
type lifeToken struct {
	mu     sync.Mutex
	closed bool
	gen    uint64
}

func (t *lifeToken) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Close marks the token closed. Returns true only on the first call.
func (t *lifeToken) Close() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.closed = true
	return true
}

// Gen returns the current generation.
func (t *lifeToken) Gen() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

// Bump starts a new generation and returns it. Continuations holding the
// previous value become stale at their next check.
func (t *lifeToken) Bump() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	return t.gen
}

// Stale reports whether a continuation captured at gen must discard its
// result instead of mutating session state.
func (t *lifeToken) Stale(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed || gen != t.gen
}
