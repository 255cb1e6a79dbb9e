package keys

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidChord is returned for chord strings that cannot be bound.
var ErrInvalidChord = errors.New("invalid chord")

// Separator joins the tokens of a canonical chord.
const Separator = "+"

var modifierPriority = map[string]int{
	Cmd:   0,
	Ctrl:  1,
	Alt:   2,
	Shift: 3,
}

// IsModifier reports whether token is one of cmd, ctrl, alt or shift.
func IsModifier(token string) bool {
	_, ok := modifierPriority[token]
	return ok
}

// Canonicalize turns a set of normalized tokens into the canonical chord
// string: modifiers first in cmd, ctrl, alt, shift order, then every other
// token in ascending byte order. Duplicates and empty tokens are dropped.
// The result does not depend on the order of tokens.
func Canonicalize(tokens []string) string {
	seen := make(map[string]struct{}, len(tokens))
	var modifiers, others []string
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if IsModifier(t) {
			modifiers = append(modifiers, t)
		} else {
			others = append(others, t)
		}
	}
	sort.Slice(modifiers, func(i, j int) bool {
		return modifierPriority[modifiers[i]] < modifierPriority[modifiers[j]]
	})
	sort.Strings(others)
	return strings.Join(append(modifiers, others...), Separator)
}

// ParseChord normalizes a user-typed or stored chord such as "Ctrl+Shift+K"
// or "shift+win+k" into canonical form. The plus key is spelled "plus".
func ParseChord(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidChord)
	}
	parts := strings.Split(s, Separator)
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return "", fmt.Errorf("%w: empty key in %q", ErrInvalidChord, s)
		}
		tokens = append(tokens, tokenFor(part))
	}
	return Canonicalize(tokens), nil
}

// ParseBindableChord is ParseChord plus the requirement that the chord
// contains at least one non-modifier key.
func ParseBindableChord(s string) (string, error) {
	chord, err := ParseChord(s)
	if err != nil {
		return "", err
	}
	if !HasNonModifier(chord) {
		return "", fmt.Errorf("%w: %q has no non-modifier key", ErrInvalidChord, s)
	}
	return chord, nil
}

func tokenFor(part string) string {
	r := []rune(part)
	if len(r) == 1 {
		return Character(r[0]).Token()
	}
	return Named(part).Token()
}

// Tokens splits a canonical chord back into its tokens.
func Tokens(chord string) []string {
	if chord == "" {
		return nil
	}
	return strings.Split(chord, Separator)
}

// HasNonModifier reports whether chord contains a key other than a modifier.
func HasNonModifier(chord string) bool {
	for _, t := range Tokens(chord) {
		if !IsModifier(t) {
			return true
		}
	}
	return false
}
