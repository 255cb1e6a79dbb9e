// Package hotkey captures global keyboard input and turns it into key
// transitions for the engine.
package hotkey

import (
	"context"
	"errors"

	"github.com/TanaroSch/hotkey-snippets/internal/keys"
)

var (
	// ErrPermissionDenied is returned when the OS refuses global keyboard access,
	// for example on Wayland or without accessibility permission on macOS.
	ErrPermissionDenied = errors.New("global keyboard access denied")
	// ErrBackendNotAvailable is returned when a source cannot be used on the current system.
	ErrBackendNotAvailable = errors.New("backend not available on this system")
	// ErrCaptureDisabled is returned when the configured backend is "none".
	ErrCaptureDisabled = errors.New("keyboard capture disabled by configuration")
)

// Source delivers global key transitions.
type Source interface {
	// Start begins capturing. Calling Start on a running source returns the
	// same channel. The channel is closed after Stop or when ctx ends.
	Start(ctx context.Context) (<-chan keys.Event, error)

	// Stop releases the OS hook or grabs.
	Stop() error

	// Name returns a human-readable name for this source (for logging).
	Name() string

	// SupportsRecording reports whether arbitrary chords can be captured.
	// Grab-based sources only see chords they were told to register.
	SupportsRecording() bool
}

// ChordSyncer is implemented by sources that must be told which chords to
// listen for.
type ChordSyncer interface {
	Sync(chords []string)
}
