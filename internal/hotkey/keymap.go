package hotkey

import (
	"strconv"
	"strings"

	"golang.design/x/hotkey"
)

var letterKeys = [26]hotkey.Key{
	hotkey.KeyA, hotkey.KeyB, hotkey.KeyC, hotkey.KeyD, hotkey.KeyE, hotkey.KeyF,
	hotkey.KeyG, hotkey.KeyH, hotkey.KeyI, hotkey.KeyJ, hotkey.KeyK, hotkey.KeyL,
	hotkey.KeyM, hotkey.KeyN, hotkey.KeyO, hotkey.KeyP, hotkey.KeyQ, hotkey.KeyR,
	hotkey.KeyS, hotkey.KeyT, hotkey.KeyU, hotkey.KeyV, hotkey.KeyW, hotkey.KeyX,
	hotkey.KeyY, hotkey.KeyZ,
}

var digitKeys = [10]hotkey.Key{
	hotkey.Key0, hotkey.Key1, hotkey.Key2, hotkey.Key3, hotkey.Key4,
	hotkey.Key5, hotkey.Key6, hotkey.Key7, hotkey.Key8, hotkey.Key9,
}

var functionKeys = [12]hotkey.Key{
	hotkey.KeyF1, hotkey.KeyF2, hotkey.KeyF3, hotkey.KeyF4, hotkey.KeyF5, hotkey.KeyF6,
	hotkey.KeyF7, hotkey.KeyF8, hotkey.KeyF9, hotkey.KeyF10, hotkey.KeyF11, hotkey.KeyF12,
}

var namedKeys = map[string]hotkey.Key{
	"space":  hotkey.KeySpace,
	"tab":    hotkey.KeyTab,
	"enter":  hotkey.KeyReturn,
	"escape": hotkey.KeyEscape,
	"delete": hotkey.KeyDelete,
	"left":   hotkey.KeyLeft,
	"right":  hotkey.KeyRight,
	"up":     hotkey.KeyUp,
	"down":   hotkey.KeyDown,
}

// grabKey maps a chord token to a key a grab source can register.
// Tokens without a mapping can still be bound, but only the hook source
// sees them.
func grabKey(token string) (hotkey.Key, bool) {
	if len(token) == 1 {
		c := token[0]
		switch {
		case c >= 'a' && c <= 'z':
			return letterKeys[c-'a'], true
		case c >= '0' && c <= '9':
			return digitKeys[c-'0'], true
		}
		k, ok := punctuationKeys[c]
		return hotkey.Key(k), ok
	}
	if rest, ok := strings.CutPrefix(token, "f"); ok {
		if n, err := strconv.Atoi(rest); err == nil {
			if n >= 1 && n <= len(functionKeys) {
				return functionKeys[n-1], true
			}
			return 0, false
		}
	}
	k, ok := namedKeys[token]
	return k, ok
}
