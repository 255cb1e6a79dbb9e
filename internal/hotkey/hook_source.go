package hotkey

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	hook "github.com/robotn/gohook"

	"github.com/TanaroSch/hotkey-snippets/internal/keys"
)

// DefaultHookStartTimeout bounds how long Start waits for the OS hook to come up.
const DefaultHookStartTimeout = 2 * time.Second

// HookSource observes every key press through a global low-level hook
// (github.com/robotn/gohook). It can record arbitrary chords.
type HookSource struct {
	mu           sync.Mutex
	running      bool
	out          chan keys.Event
	cancel       context.CancelFunc
	done         chan struct{}
	startTimeout time.Duration
	display      DisplayServer
	names        *keyNamer
}

// NewHookSource creates a hook source. A non-positive timeout uses
// DefaultHookStartTimeout.
func NewHookSource(startTimeout time.Duration) *HookSource {
	if startTimeout <= 0 {
		startTimeout = DefaultHookStartTimeout
	}
	return &HookSource{
		startTimeout: startTimeout,
		display:      DetectDisplayServer(),
		names:        newKeyNamer(hook.Keycode, hook.RawcodetoKeychar),
	}
}

// Name returns the name of this source.
func (s *HookSource) Name() string {
	return "Global hook (github.com/robotn/gohook)"
}

// SupportsRecording reports true: the hook sees every key.
func (s *HookSource) SupportsRecording() bool {
	return true
}

// Start installs the hook and waits for the OS to confirm it.
func (s *HookSource) Start(ctx context.Context) (<-chan keys.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		select {
		case <-s.done:
			// The previous run ended with its context; install a fresh hook.
			hook.End()
			s.running = false
		default:
			return s.out, nil
		}
	}

	switch s.display {
	case DisplayServerWayland:
		return nil, fmt.Errorf("%w: Wayland does not allow global key hooks", ErrPermissionDenied)
	case DisplayServerUnknown:
		return nil, fmt.Errorf("%w: no display server detected", ErrPermissionDenied)
	}

	evChan := hook.Start()
	if err := waitForHook(ctx, evChan, s.startTimeout); err != nil {
		hook.End()
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.out = make(chan keys.Event, 64)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.pump(runCtx, evChan, s.out, s.done)

	log.Printf("Hook source: keyboard hook started on %s", s.display)
	return s.out, nil
}

func waitForHook(ctx context.Context, evChan <-chan hook.Event, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case ev, ok := <-evChan:
			if !ok {
				return fmt.Errorf("%w: keyboard hook closed during startup", ErrPermissionDenied)
			}
			if ev.Kind == hook.HookEnabled {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("%w: keyboard hook did not start within %s", ErrPermissionDenied, timeout)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// pump converts hook events until ctx ends or the hook channel closes.
// KeyHold is the physical press; KeyDown is a typed-character event and is skipped.
func (s *HookSource) pump(ctx context.Context, evChan <-chan hook.Event, out chan<- keys.Event, done chan<- struct{}) {
	defer close(done)
	defer close(out)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("RECOVERED FROM PANIC IN HOOK SOURCE: %v", r)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-evChan:
			if !ok {
				return
			}
			var kind keys.Transition
			switch ev.Kind {
			case hook.KeyHold:
				kind = keys.KeyDown
			case hook.KeyUp:
				kind = keys.KeyUp
			default:
				continue
			}
			k := s.names.key(ev.Keycode, ev.Rawcode)
			if k.IsZero() {
				continue
			}
			select {
			case out <- keys.Event{Kind: kind, Key: k}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Stop removes the hook. Stopping a source that is not running is a no-op.
func (s *HookSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.cancel()
	hook.End()
	<-s.done
	s.running = false
	log.Println("Hook source: keyboard hook stopped")
	return nil
}
