//go:build !windows

package ui

import (
	"fmt"
	"log"
	"os/exec"
	"runtime"
)

// openerFor returns the command that hands a file to the desktop's default
// application.
func openerFor(goos string) string {
	if goos == "darwin" {
		return "open"
	}
	return "xdg-open"
}

func openFileInDefaultApp(filePath string) error {
	cmd := exec.Command(openerFor(runtime.GOOS), filePath)
	log.Printf("Opening '%s' with %s", filePath, cmd.Path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", cmd.String(), err)
	}
	// Reap the opener; it usually exits as soon as the app is launched.
	go func() { _ = cmd.Wait() }()
	return nil
}
