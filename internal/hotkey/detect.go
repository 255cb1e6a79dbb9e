package hotkey

import (
	"log"
	"os"
	"runtime"
)

// DisplayServer represents the type of display server in use
type DisplayServer int

const (
	DisplayServerUnknown DisplayServer = iota
	DisplayServerWindows
	DisplayServerX11
	DisplayServerWayland
	DisplayServerMacOS
)

func (ds DisplayServer) String() string {
	switch ds {
	case DisplayServerWindows:
		return "Windows"
	case DisplayServerX11:
		return "X11"
	case DisplayServerWayland:
		return "Wayland"
	case DisplayServerMacOS:
		return "macOS"
	default:
		return "Unknown"
	}
}

// DetectDisplayServer determines which display server is currently in use.
// This function is safe to call on any platform.
func DetectDisplayServer() DisplayServer {
	ds := detectDisplayServer(runtime.GOOS, os.Getenv)
	if ds == DisplayServerUnknown {
		log.Println("Warning: Could not detect display server type")
	}
	return ds
}

func detectDisplayServer(goos string, getenv func(string) string) DisplayServer {
	switch goos {
	case "windows":
		return DisplayServerWindows
	case "darwin":
		return DisplayServerMacOS
	}

	// Check Wayland first: XWayland also sets DISPLAY.
	if getenv("WAYLAND_DISPLAY") != "" || getenv("XDG_SESSION_TYPE") == "wayland" {
		return DisplayServerWayland
	}
	if getenv("DISPLAY") != "" {
		return DisplayServerX11
	}
	return DisplayServerUnknown
}
