//go:build linux

package hotkey

import "golang.design/x/hotkey"

// X11 delivers a grab only when the modifier state matches exactly, so
// NumLock (Mod2) and CapsLock (LockMask) would otherwise swallow hotkeys.
const capsLockMask hotkey.Modifier = 1 << 1

var lockMasks = []hotkey.Modifier{hotkey.Mod2, capsLockMask}

// expandModifiers returns modifiers plus every combination of lock masks.
// The unmodified set comes first.
func expandModifiers(modifiers []hotkey.Modifier) [][]hotkey.Modifier {
	variants := make([][]hotkey.Modifier, 0, 1<<len(lockMasks))
	for set := 0; set < 1<<len(lockMasks); set++ {
		v := append([]hotkey.Modifier(nil), modifiers...)
		for i, mask := range lockMasks {
			if set&(1<<i) != 0 {
				v = append(v, mask)
			}
		}
		variants = append(variants, v)
	}
	return variants
}
