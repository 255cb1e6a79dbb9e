//go:build !windows

package clipboard

import (
	"errors"
	"log"
	"os/exec"
	"runtime"
	"strings"
)

// pasteTool is an external command that sends the paste shortcut.
type pasteTool struct {
	name string
	args []string
}

var (
	// --clearmodifiers lifts the snippet chord's modifiers, which are usually
	// still held, for the duration of the keystroke.
	xdotool   = pasteTool{"xdotool", []string{"key", "--clearmodifiers", "ctrl+v"}}
	wtype     = pasteTool{"wtype", []string{"-M", "ctrl", "-P", "v", "-m", "ctrl"}}
	osascript = pasteTool{"osascript", []string{"-e", `tell application "System Events" to keystroke "v" using command down`}}
)

// pasteToolsFor lists the tools to try on goos, most likely first.
func pasteToolsFor(goos string) []pasteTool {
	if goos == "darwin" {
		return []pasteTool{osascript}
	}
	return []pasteTool{xdotool, wtype}
}

// simulatePlatformPaste sends the paste shortcut with the first tool that works.
func simulatePlatformPaste() error {
	var failed []string
	for _, tool := range pasteToolsFor(runtime.GOOS) {
		output, err := exec.Command(tool.name, tool.args...).CombinedOutput()
		if err == nil {
			log.Printf("Paste simulation with %s successful", tool.name)
			return nil
		}
		log.Printf("%s paste failed: %v %s", tool.name, err, strings.TrimSpace(string(output)))
		failed = append(failed, tool.name)
	}
	return errors.New("no paste tool worked (tried " + strings.Join(failed, ", ") + "; install xdotool or wtype, or grant accessibility access on macOS)")
}
