package clipboard

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBoard stands in for the system clipboard.
type fakeBoard struct {
	mu       sync.Mutex
	content  string
	readErr  error
	writeErr error
	pastes   int
}

func (b *fakeBoard) read() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content, b.readErr
}

func (b *fakeBoard) write(s string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.writeErr != nil {
		return b.writeErr
	}
	b.content = s
	return nil
}

func (b *fakeBoard) paste() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pastes++
	return nil
}

func (b *fakeBoard) Content() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content
}

func newFakeWriter(opts Options, b *fakeBoard) *Writer {
	opts.PasteDelay = time.Millisecond
	opts.RestoreDelay = time.Millisecond
	w := NewWriter(opts)
	w.readAll = b.read
	w.writeAll = b.write
	w.paste = b.paste
	return w
}

func TestWriteText(t *testing.T) {
	b := &fakeBoard{content: "before"}
	w := newFakeWriter(Options{}, b)

	require.NoError(t, w.WriteText("hello"))
	assert.Equal(t, "hello", b.Content())
	assert.False(t, w.CanRestore())
	assert.Zero(t, b.pastes)
}

func TestWriteTextFailureWrapsUnavailable(t *testing.T) {
	noDisplay := errors.New("no display")
	b := &fakeBoard{writeErr: noDisplay}
	w := newFakeWriter(Options{}, b)

	err := w.WriteText("hello")
	require.ErrorIs(t, err, ErrClipboardUnavailable)
	require.ErrorIs(t, err, noDisplay)
}

func TestManualRestore(t *testing.T) {
	b := &fakeBoard{content: "before"}
	var states []bool
	w := newFakeWriter(Options{
		RestoreClipboard: true,
		OnRestoreChange:  func(ok bool) { states = append(states, ok) },
	}, b)

	require.NoError(t, w.WriteText("snippet"))
	assert.True(t, w.CanRestore())

	assert.True(t, w.Restore())
	assert.Equal(t, "before", b.Content())
	assert.False(t, w.Restore())
	assert.Equal(t, []bool{true, false}, states)
}

func TestAutoPasteRestoresAfterPaste(t *testing.T) {
	b := &fakeBoard{content: "before"}
	w := newFakeWriter(Options{AutoPaste: true, RestoreClipboard: true}, b)

	require.NoError(t, w.WriteText("snippet"))
	w.Wait()

	assert.Equal(t, 1, b.pastes)
	assert.Equal(t, "before", b.Content())
	assert.False(t, w.CanRestore())
}

func TestAutoPasteWithoutRestoreKeepsSnippet(t *testing.T) {
	b := &fakeBoard{content: "before"}
	w := newFakeWriter(Options{AutoPaste: true}, b)

	require.NoError(t, w.WriteText("snippet"))
	w.Wait()

	assert.Equal(t, 1, b.pastes)
	assert.Equal(t, "snippet", b.Content())
}
