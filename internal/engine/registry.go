package engine

import (
	"errors"
	"fmt"

	"github.com/TanaroSch/hotkey-snippets/internal/keys"
)

var (
	// ErrIndexOutOfRange is returned when a registry index does not exist.
	ErrIndexOutOfRange = errors.New("binding index out of range")
	// ErrEmptyText is returned when a binding has no snippet text.
	ErrEmptyText = errors.New("snippet text is empty")
)

// Binding pairs a snippet with the chord that copies it.
type Binding struct {
	Text  string
	Chord string
	// Secret names a keyring entry holding Text. Bindings with a Secret are
	// persisted without their text.
	Secret string
}

// Registry is the ordered list of bindings. Identity is positional: removing
// an entry shifts every later index down by one.
// It is not safe for concurrent use; Engine guards it with its own lock.
type Registry struct {
	bindings []Binding
}

// NewRegistry creates a registry holding a copy of initial.
func NewRegistry(initial []Binding) *Registry {
	return &Registry{bindings: append([]Binding(nil), initial...)}
}

// Len returns the number of bindings.
func (r *Registry) Len() int {
	return len(r.bindings)
}

// Add validates b, canonicalizes its chord and appends it. Duplicate chords
// are accepted. It returns the index of the new binding.
func (r *Registry) Add(b Binding) (int, error) {
	if b.Text == "" {
		return -1, ErrEmptyText
	}
	chord, err := keys.ParseBindableChord(b.Chord)
	if err != nil {
		return -1, err
	}
	b.Chord = chord
	r.bindings = append(r.bindings, b)
	return len(r.bindings) - 1, nil
}

// RemoveAt deletes the binding at index and returns it.
func (r *Registry) RemoveAt(index int) (Binding, error) {
	if err := r.check(index); err != nil {
		return Binding{}, err
	}
	removed := r.bindings[index]
	r.bindings = append(r.bindings[:index], r.bindings[index+1:]...)
	return removed, nil
}

// ReplaceChordAt overwrites only the chord of the binding at index.
func (r *Registry) ReplaceChordAt(index int, chord string) (Binding, error) {
	if err := r.check(index); err != nil {
		return Binding{}, err
	}
	canonical, err := keys.ParseBindableChord(chord)
	if err != nil {
		return Binding{}, err
	}
	r.bindings[index].Chord = canonical
	return r.bindings[index], nil
}

// Match returns the binding whose chord equals chord. Every binding is
// scanned, so with duplicate chords the last one in registry order wins.
func (r *Registry) Match(chord string) (Binding, int) {
	idx := -1
	var found Binding
	if chord == "" {
		return found, idx
	}
	for i, b := range r.bindings {
		if b.Chord == chord {
			found, idx = b, i
		}
	}
	return found, idx
}

// Snapshot returns a copy of the bindings in order.
func (r *Registry) Snapshot() []Binding {
	return append([]Binding(nil), r.bindings...)
}

func (r *Registry) check(index int) error {
	if index < 0 || index >= len(r.bindings) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(r.bindings))
	}
	return nil
}
