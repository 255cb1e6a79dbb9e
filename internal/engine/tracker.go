package engine

import "github.com/TanaroSch/hotkey-snippets/internal/keys"

// Tracker holds the set of currently pressed key tokens.
// It is not safe for concurrent use; Engine guards it with its own lock.
type Tracker struct {
	held map[string]struct{}
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{held: make(map[string]struct{})}
}

// Press adds token to the held set and reports whether the set changed.
// A repeated press of a key that is already held (OS auto-repeat) returns false.
func (t *Tracker) Press(token string) bool {
	if token == "" {
		return false
	}
	if _, ok := t.held[token]; ok {
		return false
	}
	t.held[token] = struct{}{}
	return true
}

// Release removes token. Releasing a token that is not held is a no-op.
func (t *Tracker) Release(token string) {
	delete(t.held, token)
}

// Clear forgets every held key.
func (t *Tracker) Clear() {
	for k := range t.held {
		delete(t.held, k)
	}
}

// Len returns the number of held keys.
func (t *Tracker) Len() int {
	return len(t.held)
}

// Holding reports whether token is currently held.
func (t *Tracker) Holding(token string) bool {
	_, ok := t.held[token]
	return ok
}

// Chord returns the canonical chord of the held set.
func (t *Tracker) Chord() string {
	tokens := make([]string, 0, len(t.held))
	for k := range t.held {
		tokens = append(tokens, k)
	}
	return keys.Canonicalize(tokens)
}
