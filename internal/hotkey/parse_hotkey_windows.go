//go:build windows

package hotkey

import (
	"golang.design/x/hotkey"

	"github.com/TanaroSch/hotkey-snippets/internal/keys"
)

// platformModifier maps a modifier token to its Windows modifier.
// On Windows, cmd is the Windows key.
func platformModifier(token string) (hotkey.Modifier, bool) {
	switch token {
	case keys.Ctrl:
		return hotkey.ModCtrl, true
	case keys.Shift:
		return hotkey.ModShift, true
	case keys.Alt:
		return hotkey.ModAlt, true
	case keys.Cmd:
		return hotkey.ModWin, true
	}
	return 0, false
}
