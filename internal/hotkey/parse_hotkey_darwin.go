//go:build darwin

package hotkey

import (
	"golang.design/x/hotkey"

	"github.com/TanaroSch/hotkey-snippets/internal/keys"
)

func platformModifier(token string) (hotkey.Modifier, bool) {
	switch token {
	case keys.Ctrl:
		return hotkey.ModCtrl, true
	case keys.Shift:
		return hotkey.ModShift, true
	case keys.Alt:
		return hotkey.ModOption, true
	case keys.Cmd:
		return hotkey.ModCmd, true
	}
	return 0, false
}
