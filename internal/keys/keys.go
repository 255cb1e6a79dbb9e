// Package keys holds the key model shared by every capture backend: a tagged
// key value, its normalized token form and the canonical chord encoding.
package keys

import (
	"strings"
	"unicode"
)

// Modifier tokens. Left and right variants of a modifier always normalize to
// one of these.
const (
	Cmd   = "cmd"
	Ctrl  = "ctrl"
	Alt   = "alt"
	Shift = "shift"
)

type keyKind uint8

const (
	kindNone keyKind = iota
	kindChar
	kindNamed
)

// Key is either a character key or a named key, as reported by a capture
// backend. Use Character or Named to build one.
type Key struct {
	kind keyKind
	char rune
	name string
}

// Character returns the key that produces r.
func Character(r rune) Key {
	return Key{kind: kindChar, char: r}
}

// Named returns a non-character key such as "enter", "f5" or "ctrl_r".
func Named(name string) Key {
	return Key{kind: kindNamed, name: name}
}

// IsZero reports whether k was never set.
func (k Key) IsZero() bool {
	return k.kind == kindNone
}

func (k Key) String() string {
	switch k.kind {
	case kindChar:
		return "Character(" + string(k.char) + ")"
	case kindNamed:
		return "Named(" + k.name + ")"
	default:
		return "Key(none)"
	}
}

// aliases maps every spelling a backend or a user may use onto its token.
var aliases = map[string]string{
	"control": Ctrl,
	"lctrl":   Ctrl,
	"rctrl":   Ctrl,
	"ctrl_l":  Ctrl,
	"ctrl_r":  Ctrl,

	"option": Alt,
	"opt":    Alt,
	"lalt":   Alt,
	"ralt":   Alt,
	"alt_l":  Alt,
	"alt_r":  Alt,
	"alt_gr": Alt,
	"altgr":  Alt,

	"lshift":  Shift,
	"rshift":  Shift,
	"shift_l": Shift,
	"shift_r": Shift,

	"command": Cmd,
	"super":   Cmd,
	"win":     Cmd,
	"windows": Cmd,
	"meta":    Cmd,
	"lcmd":    Cmd,
	"rcmd":    Cmd,
	"cmd_l":   Cmd,
	"cmd_r":   Cmd,
	"lmeta":   Cmd,
	"rmeta":   Cmd,

	"return":   "enter",
	"esc":      "escape",
	"spacebar": "space",
	" ":        "space",
	"+":        "plus",
}

// Token returns the lowercase token for k, or "" if k carries no usable name.
func (k Key) Token() string {
	switch k.kind {
	case kindChar:
		if k.char == 0 || unicode.IsControl(k.char) {
			return ""
		}
		return normalizeName(string(unicode.ToLower(k.char)))
	case kindNamed:
		return normalizeName(k.name)
	default:
		return ""
	}
}

func normalizeName(name string) string {
	if name == " " {
		return "space"
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[name]; ok {
		return alias
	}
	return name
}

// Transition is the direction of a physical key change.
type Transition uint8

const (
	KeyDown Transition = iota + 1
	KeyUp
)

func (t Transition) String() string {
	switch t {
	case KeyDown:
		return "KeyDown"
	case KeyUp:
		return "KeyUp"
	default:
		return "Transition(?)"
	}
}

// Event is a single key transition delivered by a capture backend.
type Event struct {
	Kind Transition
	Key  Key
}

// Down is shorthand for a KeyDown event.
func Down(k Key) Event { return Event{Kind: KeyDown, Key: k} }

// Up is shorthand for a KeyUp event.
func Up(k Key) Event { return Event{Kind: KeyUp, Key: k} }
