package hotkey

import (
	"fmt"
	"unicode/utf8"

	"github.com/TanaroSch/hotkey-snippets/internal/keys"
)

// modifierCodes maps libuiohook virtual codes of left/right modifiers.
var modifierCodes = map[uint16]string{
	29:   keys.Ctrl,  // VC_CONTROL_L
	3613: keys.Ctrl,  // VC_CONTROL_R
	42:   keys.Shift, // VC_SHIFT_L
	54:   keys.Shift, // VC_SHIFT_R
	56:   keys.Alt,   // VC_ALT_L
	3640: keys.Alt,   // VC_ALT_R
	3675: keys.Cmd,   // VC_META_L
	3676: keys.Cmd,   // VC_META_R
}

// symbolCodes pins the unshifted US-layout character of libuiohook's digit
// and punctuation codes. The gohook name table lists shifted and unshifted
// names under one code, so inverting it would name the = key "+".
var symbolCodes = map[uint16]rune{
	2: '1', 3: '2', 4: '3', 5: '4', 6: '5', 7: '6', 8: '7', 9: '8', 10: '9', 11: '0',
	12: '-',  // VC_MINUS
	13: '=',  // VC_EQUALS
	26: '[',  // VC_OPEN_BRACKET
	27: ']',  // VC_CLOSE_BRACKET
	39: ';',  // VC_SEMICOLON
	40: '\'', // VC_QUOTE
	41: '`',  // VC_BACKQUOTE
	43: '\\', // VC_BACK_SLASH
	51: ',',  // VC_COMMA
	52: '.',  // VC_PERIOD
	53: '/',  // VC_SLASH
}

// keyNamer resolves hook key codes to keys.
type keyNamer struct {
	byCode   map[uint16]string
	fallback func(raw uint16) string
}

// newKeyNamer inverts a name→code table. Several names can share a code, so
// the shortest name wins, then the lexicographically smallest.
func newKeyNamer(codes map[string]uint16, fallback func(raw uint16) string) *keyNamer {
	byCode := make(map[uint16]string, len(codes))
	for name, code := range codes {
		if name == "" {
			continue
		}
		cur, ok := byCode[code]
		if !ok || len(name) < len(cur) || (len(name) == len(cur) && name < cur) {
			byCode[code] = name
		}
	}
	return &keyNamer{byCode: byCode, fallback: fallback}
}

// key resolves a hook event's key code (and raw code as fallback).
// Code 0 yields the zero Key, which the engine ignores.
func (n *keyNamer) key(code, raw uint16) keys.Key {
	if code == 0 {
		return keys.Key{}
	}
	if m, ok := modifierCodes[code]; ok {
		return keys.Named(m)
	}
	if r, ok := symbolCodes[code]; ok {
		return keys.Character(r)
	}
	if name, ok := n.byCode[code]; ok {
		return keyFromName(name)
	}
	if n.fallback != nil {
		if name := n.fallback(raw); name != "" {
			return keyFromName(name)
		}
	}
	return keys.Named(fmt.Sprintf("key%d", code))
}

// keyFromName builds a character key for single-rune names and a named key
// otherwise.
func keyFromName(name string) keys.Key {
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		return keys.Character(r)
	}
	return keys.Named(name)
}
