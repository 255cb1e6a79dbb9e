package clipboard

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable wraps failures of the system clipboard.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

const (
	DefaultPasteDelay   = 400 * time.Millisecond
	DefaultRestoreDelay = 300 * time.Millisecond
)

// Options controls what happens around a clipboard write.
type Options struct {
	// AutoPaste simulates the platform paste shortcut after each write.
	AutoPaste bool
	// RestoreClipboard remembers the previous clipboard text. With AutoPaste
	// it is put back after the paste; otherwise Restore puts it back.
	RestoreClipboard bool
	PasteDelay       time.Duration
	RestoreDelay     time.Duration
	// OnRestoreChange reports whether a previous clipboard is available.
	OnRestoreChange func(canRestore bool)
}

// Writer puts snippet text on the system clipboard. It implements
// engine.ClipboardSink.
type Writer struct {
	opts Options

	readAll  func() (string, error)
	writeAll func(string) error
	paste    func() error

	mu          sync.Mutex
	previous    string
	hasPrevious bool
	wg          sync.WaitGroup
}

// NewWriter creates a writer backed by github.com/atotto/clipboard.
func NewWriter(opts Options) *Writer {
	if opts.PasteDelay <= 0 {
		opts.PasteDelay = DefaultPasteDelay
	}
	if opts.RestoreDelay <= 0 {
		opts.RestoreDelay = DefaultRestoreDelay
	}
	return &Writer{
		opts:     opts,
		readAll:  clipboard.ReadAll,
		writeAll: clipboard.WriteAll,
		paste:    simulatePlatformPaste,
	}
}

// WriteText replaces the clipboard contents with text.
func (w *Writer) WriteText(text string) error {
	if w.opts.RestoreClipboard {
		prev, err := w.readAll()
		if err != nil {
			log.Printf("Warning: Failed to read clipboard before writing: %v", err)
		} else if prev != text {
			w.setPrevious(prev, true)
		}
	}

	if err := w.writeAll(text); err != nil {
		return fmt.Errorf("%w: %w", ErrClipboardUnavailable, err)
	}

	if w.opts.AutoPaste {
		w.wg.Add(1)
		go w.pasteAndRestore()
	}
	return nil
}

func (w *Writer) pasteAndRestore() {
	defer w.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("RECOVERED FROM PANIC IN PASTE GOROUTINE: %v", r)
		}
	}()

	// Give the clipboard owner and target app time to settle.
	time.Sleep(w.opts.PasteDelay)
	if err := w.paste(); err != nil {
		log.Printf("Automatic paste failed: %v", err)
		return
	}

	if w.opts.RestoreClipboard {
		time.Sleep(w.opts.RestoreDelay)
		if w.Restore() {
			log.Println("Original clipboard content automatically restored after paste.")
		}
	}
}

// CanRestore reports whether a previous clipboard text is remembered.
func (w *Writer) CanRestore() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hasPrevious
}

// Restore writes the remembered clipboard text back. It reports whether
// anything was restored.
func (w *Writer) Restore() bool {
	w.mu.Lock()
	prev, ok := w.previous, w.hasPrevious
	w.mu.Unlock()
	if !ok {
		return false
	}

	if err := w.writeAll(prev); err != nil {
		log.Printf("Failed to restore original clipboard: %v", err)
		return false
	}
	w.setPrevious("", false)
	log.Println("Original clipboard content restored.")
	return true
}

func (w *Writer) setPrevious(text string, ok bool) {
	w.mu.Lock()
	changed := w.hasPrevious != ok
	w.previous, w.hasPrevious = text, ok
	w.mu.Unlock()

	if changed && w.opts.OnRestoreChange != nil {
		w.opts.OnRestoreChange(ok)
	}
}

// Wait blocks until background paste work has finished.
func (w *Writer) Wait() {
	w.wg.Wait()
}
