// Package engine turns a stream of key transitions into clipboard writes.
//
// An Engine owns the binding registry and the set of held keys. In Listening
// mode every key press that grows the held set is matched against the
// registry; in Recording mode the first chord containing a non-modifier key is
// captured instead, either as the new chord of an existing binding or as the
// answer to a CaptureChord call.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/TanaroSch/hotkey-snippets/internal/keys"
)

var (
	// ErrRecordingCancelled is returned by CaptureChord when the capture was
	// superseded or cancelled before a chord was pressed.
	ErrRecordingCancelled = errors.New("chord recording cancelled")
	// ErrClosed is returned by mutations after Close.
	ErrClosed = errors.New("engine is closed")
)

// Mode is the engine's input mode.
type Mode int

const (
	Listening Mode = iota
	Recording
)

func (m Mode) String() string {
	if m == Recording {
		return "Recording"
	}
	return "Listening"
}

// ClipboardSink receives the text of a matched binding.
type ClipboardSink interface {
	WriteText(text string) error
}

// Dispatch reports one chord match and the outcome of its clipboard write.
type Dispatch struct {
	Index   int
	Binding Binding
	Err     error
}

// Options configures a new Engine. Every field is optional.
type Options struct {
	Bindings  []Binding
	Clipboard ClipboardSink
	Persister Persister
	// OnDispatch is called after every clipboard write, outside the engine lock.
	OnDispatch func(Dispatch)
	// OnPersistError is called from the persistence goroutine with an error
	// wrapping ErrPersistenceFailure.
	OnPersistError func(error)
}

type captureResult struct {
	chord string
	err   error
}

// recordTarget is what a Recording session will write to. capture is nil
// when index names a registry slot.
type recordTarget struct {
	index   int
	capture chan captureResult
}

// Engine is safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	registry *Registry
	held     *Tracker
	mode     Mode
	target   recordTarget
	closed   bool

	clipboard  ClipboardSink
	onDispatch func(Dispatch)
	persist    *persistQueue
	notifier   *notifier
}

// New creates an engine in Listening mode. Initial bindings are validated the
// same way Add validates them; invalid entries are logged and skipped.
func New(opts Options) *Engine {
	reg := NewRegistry(nil)
	for i, b := range opts.Bindings {
		if _, err := reg.Add(b); err != nil {
			log.Printf("Engine: skipping initial binding %d (%q): %v", i, b.Chord, err)
		}
	}
	return &Engine{
		registry:   reg,
		held:       NewTracker(),
		mode:       Listening,
		target:     recordTarget{index: -1},
		clipboard:  opts.Clipboard,
		onDispatch: opts.OnDispatch,
		persist:    newPersistQueue(opts.Persister, opts.OnPersistError),
		notifier:   newNotifier(),
	}
}

// KeyDown handles a press. Presses that do not change the held set, such as
// auto-repeat, are ignored.
func (e *Engine) KeyDown(k keys.Key) {
	token := k.Token()
	if token == "" {
		return
	}

	e.mu.Lock()
	if !e.held.Press(token) {
		e.mu.Unlock()
		return
	}
	chord := e.held.Chord()

	if e.mode == Recording {
		e.recordLocked(chord)
		e.mu.Unlock()
		return
	}

	if !keys.HasNonModifier(chord) {
		e.mu.Unlock()
		return
	}
	b, idx := e.registry.Match(chord)
	e.mu.Unlock()

	if idx >= 0 {
		e.dispatch(idx, b)
	}
}

// KeyUp handles a release. It never dispatches.
func (e *Engine) KeyUp(k keys.Key) {
	token := k.Token()
	if token == "" {
		return
	}
	e.mu.Lock()
	e.held.Release(token)
	e.mu.Unlock()
}

// Handle routes one event to KeyDown or KeyUp.
func (e *Engine) Handle(ev keys.Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Engine: recovered from panic handling %s %s: %v", ev.Kind, ev.Key, r)
		}
	}()
	switch ev.Kind {
	case keys.KeyDown:
		e.KeyDown(ev.Key)
	case keys.KeyUp:
		e.KeyUp(ev.Key)
	}
}

// Run consumes events until ctx is done or events is closed.
func (e *Engine) Run(ctx context.Context, events <-chan keys.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			e.Handle(ev)
		}
	}
}

func (e *Engine) dispatch(idx int, b Binding) {
	var err error
	if e.clipboard == nil {
		err = errors.New("no clipboard sink configured")
	} else {
		err = e.clipboard.WriteText(b.Text)
	}
	if err != nil {
		log.Printf("Engine: failed to copy snippet %d (%s): %v", idx, b.Chord, err)
	} else {
		log.Printf("Engine: copied snippet %d (%s)", idx, b.Chord)
	}
	if e.onDispatch != nil {
		e.onDispatch(Dispatch{Index: idx, Binding: b, Err: err})
	}
}

// recordLocked finishes the current recording if chord is bindable.
func (e *Engine) recordLocked(chord string) {
	if !keys.HasNonModifier(chord) {
		return
	}
	target := e.target
	e.mode = Listening
	e.target = recordTarget{index: -1}
	e.held.Clear()

	if target.capture != nil {
		target.capture <- captureResult{chord: chord}
		log.Printf("Engine: captured chord %s", chord)
		e.notifier.publish(Change{Kind: RecordingEnded, Index: -1, Capture: true})
		return
	}

	b, err := e.registry.ReplaceChordAt(target.index, chord)
	if err != nil {
		log.Printf("Engine: failed to rebind snippet %d: %v", target.index, err)
		e.notifier.publish(Change{Kind: RecordingEnded, Index: target.index, Cancelled: true})
		return
	}
	log.Printf("Engine: rebound snippet %d to %s", target.index, chord)
	e.persist.enqueue(e.registry.Snapshot())
	e.notifier.publish(Change{Kind: ChordReplaced, Index: target.index, Binding: b})
	e.notifier.publish(Change{Kind: RecordingEnded, Index: target.index, Binding: b})
}

// cancelLocked leaves Recording mode without recording anything.
func (e *Engine) cancelLocked() bool {
	if e.mode != Recording {
		return false
	}
	target := e.target
	e.mode = Listening
	e.target = recordTarget{index: -1}
	if target.capture != nil {
		target.capture <- captureResult{err: ErrRecordingCancelled}
	}
	e.notifier.publish(Change{
		Kind:      RecordingEnded,
		Index:     target.index,
		Capture:   target.capture != nil,
		Cancelled: true,
	})
	return true
}

func (e *Engine) startRecordingLocked(target recordTarget) {
	e.cancelLocked()
	e.mode = Recording
	e.target = target
	e.held.Clear()
	e.notifier.publish(Change{
		Kind:    RecordingStarted,
		Index:   target.index,
		Capture: target.capture != nil,
	})
}

// RequestRebind puts the engine in Recording mode for the binding at index.
// Any recording already in progress is cancelled first.
func (e *Engine) RequestRebind(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if err := e.registry.check(index); err != nil {
		return err
	}
	e.startRecordingLocked(recordTarget{index: index})
	log.Printf("Engine: recording new chord for snippet %d", index)
	return nil
}

// CancelRebind returns to Listening mode. It reports whether a recording was
// in progress.
func (e *Engine) CancelRebind() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancelLocked()
}

// CaptureChord records the next bindable chord without touching the registry.
// It returns ErrRecordingCancelled if another recording replaces it, or the
// context error if ctx ends first.
func (e *Engine) CaptureChord(ctx context.Context) (string, error) {
	ch := make(chan captureResult, 1)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return "", ErrClosed
	}
	e.startRecordingLocked(recordTarget{index: -1, capture: ch})
	e.mu.Unlock()

	select {
	case res := <-ch:
		return res.chord, res.err
	case <-ctx.Done():
		e.mu.Lock()
		if e.mode == Recording && e.target.capture == ch {
			e.cancelLocked()
		}
		e.mu.Unlock()
		// A chord may have been captured just before the cancel.
		if res := <-ch; res.err == nil {
			return res.chord, nil
		}
		return "", ctx.Err()
	}
}

// Mode returns the current input mode.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// RecordingTarget returns the registry index being rebound. ok is false in
// Listening mode and during a CaptureChord.
func (e *Engine) RecordingTarget() (index int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != Recording || e.target.capture != nil {
		return -1, false
	}
	return e.target.index, true
}

// Held returns the canonical chord of the keys currently held down.
func (e *Engine) Held() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.held.Chord()
}

// Add appends a binding and returns its index.
func (e *Engine) Add(text, chord string) (int, error) {
	return e.AddBinding(Binding{Text: text, Chord: chord})
}

// AddBinding appends b, which may carry a keyring secret name.
func (e *Engine) AddBinding(b Binding) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return -1, ErrClosed
	}
	idx, err := e.registry.Add(b)
	if err != nil {
		return -1, err
	}
	added := e.registry.bindings[idx]
	log.Printf("Engine: added snippet %d on %s", idx, added.Chord)
	e.persist.enqueue(e.registry.Snapshot())
	e.notifier.publish(Change{Kind: Added, Index: idx, Binding: added})
	return idx, nil
}

// RemoveAt deletes the binding at index. A recording that targets the removed
// slot is cancelled; one targeting a later slot follows its binding down.
func (e *Engine) RemoveAt(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	removed, err := e.registry.RemoveAt(index)
	if err != nil {
		return err
	}
	if e.mode == Recording && e.target.capture == nil {
		switch {
		case e.target.index == index:
			e.cancelLocked()
		case e.target.index > index:
			e.target.index--
		}
	}
	log.Printf("Engine: removed snippet %d (%s)", index, removed.Chord)
	e.persist.enqueue(e.registry.Snapshot())
	e.notifier.publish(Change{Kind: Removed, Index: index, Binding: removed})
	return nil
}

// ReplaceChordAt sets the chord of the binding at index without recording.
func (e *Engine) ReplaceChordAt(index int, chord string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	b, err := e.registry.ReplaceChordAt(index, chord)
	if err != nil {
		return err
	}
	e.persist.enqueue(e.registry.Snapshot())
	e.notifier.publish(Change{Kind: ChordReplaced, Index: index, Binding: b})
	return nil
}

// ReplaceAll swaps in a freshly loaded binding list. It is used for reloads,
// so nothing is persisted. Any recording in progress is cancelled.
func (e *Engine) ReplaceAll(bindings []Binding) error {
	reg := NewRegistry(nil)
	for i, b := range bindings {
		if _, err := reg.Add(b); err != nil {
			return fmt.Errorf("binding %d: %w", i, err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	e.cancelLocked()
	e.registry = reg
	log.Printf("Engine: reloaded %d snippets", reg.Len())
	e.notifier.publish(Change{Kind: Reloaded, Index: -1})
	return nil
}

// Snapshot returns a copy of the bindings in registry order.
func (e *Engine) Snapshot() []Binding {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Snapshot()
}

// Len returns the number of bindings.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Len()
}

// Subscribe registers fn for change notifications. Changes are delivered in
// order on a single goroutine. The returned func unsubscribes.
func (e *Engine) Subscribe(fn func(Change)) func() {
	return e.notifier.subscribe(fn)
}

// Close cancels any recording, writes the last pending snapshot and stops the
// background goroutines. It is safe to call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.cancelLocked()
	e.closed = true
	e.mu.Unlock()

	e.persist.close()
	e.notifier.close()
}
