//go:build !windows

package ui

import "github.com/gen2brain/beeep"

func (n *NotificationManager) platformNotify(title, message string) error {
	// beeep takes an icon path, not bytes; leave it to the desktop default.
	return beeep.Notify(title, message, "")
}
