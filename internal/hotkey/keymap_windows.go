//go:build windows

package hotkey

// punctuationKeys holds VK_OEM_* virtual-key codes for a US layout.
var punctuationKeys = map[byte]uint16{
	'[': 0xdb, ']': 0xdd, '-': 0xbd, '=': 0xbb, ';': 0xba, '\'': 0xde,
	',': 0xbc, '.': 0xbe, '/': 0xbf, '\\': 0xdc, '`': 0xc0,
}
