//go:build darwin

package hotkey

// punctuationKeys holds kVK_ANSI_* key codes.
var punctuationKeys = map[byte]uint16{
	'[': 0x21, ']': 0x1e, '-': 0x1b, '=': 0x18, ';': 0x29, '\'': 0x27,
	',': 0x2b, '.': 0x2f, '/': 0x2c, '\\': 0x2a, '`': 0x32,
}
