package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TanaroSch/hotkey-snippets/internal/engine"
	"github.com/TanaroSch/hotkey-snippets/internal/keys"
	"github.com/TanaroSch/hotkey-snippets/internal/store"
)

func TestResolveIndex(t *testing.T) {
	bindings := []engine.Binding{
		{Text: "a", Chord: "cmd+y"},
		{Text: "b", Chord: "ctrl+shift+k"},
		{Text: "c", Chord: "cmd+y"},
	}

	tests := []struct {
		name string
		arg  string
		want int
	}{
		{"first by number", "1", 0},
		{"last by number", "3", 2},
		{"by chord", "ctrl+shift+k", 1},
		{"chord in any order", "Shift+Ctrl+K", 1},
		{"duplicate chord picks last", "cmd+y", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveIndex(bindings, tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveIndexErrors(t *testing.T) {
	bindings := []engine.Binding{{Text: "a", Chord: "cmd+y"}}

	_, err := resolveIndex(bindings, "0")
	assert.ErrorIs(t, err, engine.ErrIndexOutOfRange)

	_, err = resolveIndex(bindings, "2")
	assert.ErrorIs(t, err, engine.ErrIndexOutOfRange)

	_, err = resolveIndex(bindings, "ctrl+q")
	assert.Error(t, err)

	_, err = resolveIndex(bindings, "ctrl++")
	assert.ErrorIs(t, err, keys.ErrInvalidChord)
}

func newTestSession(t *testing.T, content string) (*session, store.SecretStore) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	secrets := store.NewKeyringSecrets(keyring.NewArrayKeyring(nil), "test")
	s := &session{secrets: secrets, store: store.New(path, secrets)}
	bindings, err := s.store.Load()
	require.NoError(t, err)
	s.engine = engine.New(engine.Options{Bindings: bindings, Persister: s.store})
	t.Cleanup(func() { require.NoError(t, s.close()) })
	return s, secrets
}

func TestSessionAddSecretRejectsBeforeKeyringWrite(t *testing.T) {
	tests := []struct {
		name    string
		chord   string
		secret  string
		wantErr error
	}{
		{"name already bound", "ctrl+n", "work", store.ErrSecretInUse},
		{"modifiers only", "ctrl+shift", "fresh", keys.ErrInvalidChord},
		{"empty key", "ctrl++", "fresh", keys.ErrInvalidChord},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, secrets := newTestSession(t, `[]`)
			require.NoError(t, secrets.Set("work", "original"))
			_, err := s.engine.AddBinding(engine.Binding{Text: "original", Chord: "ctrl+w", Secret: "work"})
			require.NoError(t, err)

			_, err = s.add(tt.chord, "replacement", tt.secret)
			require.ErrorIs(t, err, tt.wantErr)

			got, err := secrets.Get("work")
			require.NoError(t, err)
			assert.Equal(t, "original", got)
			_, err = secrets.Get("fresh")
			require.ErrorIs(t, err, store.ErrSecretNotFound)
			assert.Len(t, s.engine.Snapshot(), 1)
		})
	}
}

func TestSessionAddSecret(t *testing.T) {
	s, secrets := newTestSession(t, `[]`)

	idx, err := s.add("Alt+Ctrl+P", "hunter2", "pw")
	require.NoError(t, err)
	assert.Equal(t, engine.Binding{Text: "hunter2", Chord: "ctrl+alt+p", Secret: "pw"}, s.engine.Snapshot()[idx])

	got, err := secrets.Get("pw")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
}

func TestSessionRemoveKeepsSharedSecret(t *testing.T) {
	s, secrets := newTestSession(t, `[]`)
	require.NoError(t, secrets.Set("pw", "hunter2"))
	for _, chord := range []string{"ctrl+p", "ctrl+o"} {
		_, err := s.engine.AddBinding(engine.Binding{Text: "hunter2", Chord: chord, Secret: "pw"})
		require.NoError(t, err)
	}

	_, err := s.remove(0)
	require.NoError(t, err)
	_, err = secrets.Get("pw")
	require.NoError(t, err, "the other snippet still reads it")

	_, err = s.remove(0)
	require.NoError(t, err)
	_, err = secrets.Get("pw")
	require.ErrorIs(t, err, store.ErrSecretNotFound)
}
