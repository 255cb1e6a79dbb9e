package hotkey

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/TanaroSch/hotkey-snippets/internal/keys"
)

// Backend names accepted by StartSource.
const (
	BackendAuto = "auto"
	BackendHook = "hook"
	BackendGrab = "grab"
	BackendNone = "none"
)

// StartSource creates and starts the configured source.
// "auto" tries the global hook first and falls back to key grabs when the
// hook is refused. The returned error wraps ErrPermissionDenied when no
// source could get keyboard access.
func StartSource(ctx context.Context, backend string, hookTimeout time.Duration) (Source, <-chan keys.Event, error) {
	switch backend {
	case BackendNone:
		return nil, nil, ErrCaptureDisabled
	case BackendHook:
		return start(ctx, NewHookSource(hookTimeout))
	case BackendGrab:
		return start(ctx, NewGrabSource())
	case BackendAuto, "":
		src, events, err := start(ctx, NewHookSource(hookTimeout))
		if err == nil {
			return src, events, nil
		}
		if !errors.Is(err, ErrPermissionDenied) {
			return nil, nil, err
		}
		log.Printf("Warning: global hook unavailable (%v), falling back to key grabs", err)
		grab := NewGrabSource()
		if !grab.IsAvailable() {
			return nil, nil, err
		}
		return start(ctx, grab)
	default:
		return nil, nil, fmt.Errorf("%w: unknown capture backend %q", ErrBackendNotAvailable, backend)
	}
}

func start(ctx context.Context, src Source) (Source, <-chan keys.Event, error) {
	events, err := src.Start(ctx)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Selected source: %s", src.Name())
	return src, events, nil
}
