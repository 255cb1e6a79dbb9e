//go:build !linux

package hotkey

import "golang.design/x/hotkey"

// expandModifiers returns the modifiers unchanged: lock keys do not affect
// grabs outside X11.
func expandModifiers(modifiers []hotkey.Modifier) [][]hotkey.Modifier {
	return [][]hotkey.Modifier{append([]hotkey.Modifier(nil), modifiers...)}
}
