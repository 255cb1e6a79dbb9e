//go:build linux

package hotkey

// punctuationKeys holds X11 keysyms, which equal the ASCII code.
var punctuationKeys = map[byte]uint16{
	'[': 0x5b, ']': 0x5d, '-': 0x2d, '=': 0x3d, ';': 0x3b, '\'': 0x27,
	',': 0x2c, '.': 0x2e, '/': 0x2f, '\\': 0x5c, '`': 0x60,
}
