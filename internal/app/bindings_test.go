package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TanaroSch/hotkey-snippets/internal/engine"
	"github.com/TanaroSch/hotkey-snippets/internal/keys"
	"github.com/TanaroSch/hotkey-snippets/internal/store"
)

func TestDefaultBindingsAreBindable(t *testing.T) {
	defaults := DefaultBindings()
	require.Len(t, defaults, 6)
	assert.Equal(t, []string{"cmd+y", "cmd+u", "cmd+i", "cmd+o", "cmd+p", "cmd+["}, chords(defaults))

	for _, b := range defaults {
		chord, err := keys.ParseBindableChord(b.Chord)
		require.NoError(t, err, b.Chord)
		assert.Equal(t, b.Chord, chord, "default chords are stored canonical")
		assert.NotEmpty(t, b.Text)
	}
}

func TestLoadBindingsSeedsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	st := store.New(path, nil)

	got, err := LoadBindings(st)
	require.NoError(t, err)
	assert.Equal(t, DefaultBindings(), got)
	assert.FileExists(t, path)

	reloaded, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultBindings(), reloaded)
}

func TestLoadBindingsKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"text":"hello","hotkey":"ctrl+h"}]`), 0600))

	got, err := LoadBindings(store.New(path, nil))
	require.NoError(t, err)
	assert.Equal(t, []engine.Binding{{Text: "hello", Chord: "ctrl+h"}}, got)
}

func TestLoadBindingsEmptyArrayIsNotReseeded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0600))

	got, err := LoadBindings(store.New(path, nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}
