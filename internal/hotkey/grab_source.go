package hotkey

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"golang.design/x/hotkey"

	"github.com/TanaroSch/hotkey-snippets/internal/keys"
)

// GrabSource registers each bound chord with the OS through
// golang.design/x/hotkey. This works on Windows, macOS and X11 without a
// low-level hook, but only chords passed to Sync are seen, so it cannot
// record new ones.
type GrabSource struct {
	mu      sync.Mutex
	display DisplayServer
	want    map[string]struct{}
	grabs   map[string]*grab
	out     chan keys.Event
	running bool
	wg      sync.WaitGroup
}

// grab is one chord registered with the OS, possibly under several
// modifier variants.
type grab struct {
	chord   string
	hotkeys []*hotkey.Hotkey
	stop    chan struct{}
}

// NewGrabSource creates a grab source for the detected display server.
func NewGrabSource() *GrabSource {
	ds := DetectDisplayServer()
	log.Printf("Grab source: Detected display server: %s", ds)

	return &GrabSource{
		display: ds,
		want:    make(map[string]struct{}),
		grabs:   make(map[string]*grab),
	}
}

// Name returns the name of this source.
func (s *GrabSource) Name() string {
	return "Key grabs (golang.design/x/hotkey)"
}

// SupportsRecording reports false: unregistered chords are never seen.
func (s *GrabSource) SupportsRecording() bool {
	return false
}

// IsAvailable checks if this source can be used on the current system.
func (s *GrabSource) IsAvailable() bool {
	switch s.display {
	case DisplayServerWindows, DisplayServerX11, DisplayServerMacOS:
		return true
	case DisplayServerWayland:
		// golang.design/x/hotkey does NOT support Wayland
		log.Println("Grab source: Not available on Wayland")
		return false
	default:
		log.Println("Grab source: Unknown display server, assuming unavailable")
		return false
	}
}

// Start registers every chord passed to Sync so far.
func (s *GrabSource) Start(ctx context.Context) (<-chan keys.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return s.out, nil
	}
	if !s.IsAvailable() {
		return nil, fmt.Errorf("%w: key grabs are not supported on %s", ErrPermissionDenied, s.display)
	}

	s.out = make(chan keys.Event, 64)
	s.running = true
	s.applyLocked()

	go func() {
		<-ctx.Done()
		if err := s.Stop(); err != nil {
			log.Printf("Grab source: error stopping: %v", err)
		}
	}()

	return s.out, nil
}

// Sync makes the registered set equal to chords. Chords that cannot be
// grabbed are logged and skipped.
func (s *GrabSource) Sync(chords []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.want = make(map[string]struct{}, len(chords))
	for _, c := range chords {
		if c != "" {
			s.want[c] = struct{}{}
		}
	}
	if s.running {
		s.applyLocked()
	}
}

func (s *GrabSource) applyLocked() {
	for chord, g := range s.grabs {
		if _, ok := s.want[chord]; !ok {
			s.releaseLocked(g)
			delete(s.grabs, chord)
		}
	}

	pending := make([]string, 0, len(s.want))
	for chord := range s.want {
		if _, ok := s.grabs[chord]; !ok {
			pending = append(pending, chord)
		}
	}
	sort.Strings(pending)

	for _, chord := range pending {
		g, err := s.registerLocked(chord)
		if err != nil {
			log.Printf("Grab source: cannot grab '%s': %v", chord, err)
			continue
		}
		s.grabs[chord] = g
	}
}

func (s *GrabSource) registerLocked(chord string) (*grab, error) {
	modifiers, key, err := parseHotkey(chord)
	if err != nil {
		return nil, err
	}

	g := &grab{chord: chord, stop: make(chan struct{})}
	for i, mods := range expandModifiers(modifiers) {
		hk := hotkey.New(mods, key)
		if err := hk.Register(); err != nil {
			if i == 0 {
				s.closeHotkeys(g)
				return nil, fmt.Errorf("failed to register hotkey '%s': %w", chord, err)
			}
			// Lock-key variants are best effort.
			log.Printf("Grab source: variant %d of '%s' not registered: %v", i, chord, err)
			continue
		}
		g.hotkeys = append(g.hotkeys, hk)
		s.wg.Add(1)
		go s.forward(g, hk)
	}

	log.Printf("Grab source: Successfully registered hotkey '%s'", chord)
	return g, nil
}

// forward turns each OS keydown into synthetic presses of the chord's tokens
// followed by releases, so the engine sees the whole chord held at once.
func (s *GrabSource) forward(g *grab, hk *hotkey.Hotkey) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("RECOVERED FROM PANIC IN GRAB SOURCE (%s): %v", g.chord, r)
		}
	}()

	tokens := keys.Tokens(g.chord)
	for {
		select {
		case <-g.stop:
			return
		case <-hk.Keydown():
			for _, tok := range tokens {
				if !s.send(g, keys.Down(keyFromName(tok))) {
					return
				}
			}
			for i := len(tokens) - 1; i >= 0; i-- {
				if !s.send(g, keys.Up(keyFromName(tokens[i]))) {
					return
				}
			}
		}
	}
}

func (s *GrabSource) send(g *grab, ev keys.Event) bool {
	select {
	case s.out <- ev:
		return true
	case <-g.stop:
		return false
	}
}

func (s *GrabSource) releaseLocked(g *grab) {
	close(g.stop)
	s.closeHotkeys(g)
	log.Printf("Grab source: Unregistered hotkey '%s'", g.chord)
}

func (s *GrabSource) closeHotkeys(g *grab) {
	for _, hk := range g.hotkeys {
		if err := hk.Unregister(); err != nil {
			log.Printf("Grab source: Error unregistering '%s': %v", g.chord, err)
		}
	}
	g.hotkeys = nil
}

// Stop unregisters every grab and closes the event channel.
func (s *GrabSource) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	log.Printf("Grab source: Unregistering all %d hotkeys", len(s.grabs))
	for chord, g := range s.grabs {
		s.releaseLocked(g)
		delete(s.grabs, chord)
	}
	s.running = false
	out := s.out
	s.mu.Unlock()

	s.wg.Wait()
	close(out)
	return nil
}

// parseHotkey converts a canonical chord (e.g. "ctrl+alt+v") into
// golang.design/x/hotkey modifiers and key. A grab holds exactly one
// non-modifier key.
func parseHotkey(chord string) ([]hotkey.Modifier, hotkey.Key, error) {
	var (
		modifiers []hotkey.Modifier
		key       hotkey.Key
		found     bool
	)
	for _, tok := range keys.Tokens(chord) {
		if keys.IsModifier(tok) {
			mod, ok := platformModifier(tok)
			if !ok {
				return nil, 0, fmt.Errorf("unsupported modifier: %s", tok)
			}
			modifiers = append(modifiers, mod)
			continue
		}
		if found {
			return nil, 0, fmt.Errorf("chord '%s' has more than one non-modifier key", chord)
		}
		k, ok := grabKey(tok)
		if !ok {
			return nil, 0, fmt.Errorf("unsupported key: %s", tok)
		}
		key, found = k, true
	}
	if !found {
		return nil, 0, fmt.Errorf("%w: '%s' has no non-modifier key", keys.ErrInvalidChord, chord)
	}
	return modifiers, key, nil
}
