//go:build linux

package hotkey

import (
	"golang.design/x/hotkey"

	"github.com/TanaroSch/hotkey-snippets/internal/keys"
)

// platformModifier maps a modifier token to its X11 modifier.
//
// Linux implementation notes (X11):
// - Alt is typically Mod1
// - Super/Win is typically Mod4
func platformModifier(token string) (hotkey.Modifier, bool) {
	switch token {
	case keys.Ctrl:
		return hotkey.ModCtrl, true
	case keys.Shift:
		return hotkey.ModShift, true
	case keys.Alt:
		return hotkey.Mod1, true
	case keys.Cmd:
		return hotkey.Mod4, true
	}
	return 0, false
}
