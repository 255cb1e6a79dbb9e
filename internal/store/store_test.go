package store

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TanaroSch/hotkey-snippets/internal/engine"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "settings.json"), nil)

	bindings, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, bindings)
	assert.False(t, s.Exists())
}

func TestLoadCanonicalizesChords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, `[
  {"text": "hello", "hotkey": "Shift+Ctrl+H"},
  {"text": "world", "hotkey": "cmd+["}
]`)

	bindings, err := New(path, nil).Load()
	require.NoError(t, err)
	assert.Equal(t, []engine.Binding{
		{Text: "hello", Chord: "ctrl+shift+h"},
		{Text: "world", Chord: "cmd+["},
	}, bindings)
}

func TestLoadSkipsMalformedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, `[
  {"text": "ok", "hotkey": "ctrl+a"},
  "just a string",
  {"text": "no hotkey"},
  {"text": "bad chord", "hotkey": "ctrl++"},
  {"text": "modifier only", "hotkey": "ctrl+shift"},
  {"text": "", "hotkey": "ctrl+b"},
  {"text": 42, "hotkey": "ctrl+c"},
  {"hotkey": "ctrl+d"},
  {"secret": "nokeyring", "hotkey": "ctrl+e"},
  {"text": "also ok", "hotkey": "alt+z"}
]`)

	bindings, err := New(path, nil).Load()
	require.NoError(t, err)
	assert.Equal(t, []engine.Binding{
		{Text: "ok", Chord: "ctrl+a"},
		{Text: "also ok", Chord: "alt+z"},
	}, bindings)
}

func TestLoadNonArrayIsBackedUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, `{"text": "not a list", "hotkey": "ctrl+a"}`)

	bindings, err := New(path, nil).Load()
	require.NoError(t, err)
	assert.Empty(t, bindings)

	backup, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, `{"text": "not a list", "hotkey": "ctrl+a"}`, string(backup))
}

func TestLoadInvalidJSONIsBackedUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, `[{"text": "x", "hotkey": `)

	bindings, err := New(path, nil).Load()
	require.NoError(t, err)
	assert.Empty(t, bindings)
	assert.FileExists(t, path+".bak")
}

func TestSaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := New(path, nil)

	require.NoError(t, s.Save([]engine.Binding{
		{Text: "<b>fish & chips</b>", Chord: "cmd+y"},
		{Text: "hunter2", Chord: "ctrl+p", Secret: "password"},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[
  {
    "text": "<b>fish & chips</b>",
    "hotkey": "cmd+y"
  },
  {
    "secret": "password",
    "hotkey": "ctrl+p"
  }
]
`, string(data))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestSaveThenLoadPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := New(path, nil)
	want := []engine.Binding{
		{Text: "一", Chord: "cmd+y"},
		{Text: "二", Chord: "cmd+u"},
		{Text: "三", Chord: "cmd+y"},
	}

	require.NoError(t, s.Save(want))
	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSecretsResolveFromKeyring(t *testing.T) {
	kr := keyring.NewArrayKeyring(nil)
	secrets := NewKeyringSecrets(kr, "test")
	require.NoError(t, secrets.Set("token", "s3cr3t"))

	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, `[
  {"secret": "token", "hotkey": "ctrl+t"},
  {"secret": "missing", "hotkey": "ctrl+m"}
]`)

	st := New(path, secrets)
	bindings, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, []engine.Binding{{Text: "s3cr3t", Chord: "ctrl+t", Secret: "token"}}, bindings)
	assert.Equal(t, []string{"missing"}, st.Unresolved())
}

func TestUnresolvedSecretsSurviveSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, `[{"text":"a","hotkey":"ctrl+a"},{"secret":"pw","hotkey":"ctrl+p"}]`)

	s := New(path, nil)
	bindings, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []engine.Binding{{Text: "a", Chord: "ctrl+a"}}, bindings)
	assert.Equal(t, []string{"pw"}, s.Unresolved())

	bindings = append(bindings, engine.Binding{Text: "b", Chord: "ctrl+b"})
	require.NoError(t, s.Save(bindings))

	kr := keyring.NewArrayKeyring(nil)
	secrets := NewKeyringSecrets(kr, "test")
	require.NoError(t, secrets.Set("pw", "hunter2"))
	reloaded, err := New(path, secrets).Load()
	require.NoError(t, err)
	assert.Equal(t, []engine.Binding{
		{Text: "a", Chord: "ctrl+a"},
		{Text: "b", Chord: "ctrl+b"},
		{Text: "hunter2", Chord: "ctrl+p", Secret: "pw"},
	}, reloaded)
}

func TestUnresolvedSecretIsDroppedWhenNameIsReused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, `[{"secret":"pw","hotkey":"ctrl+p"}]`)

	s := New(path, nil)
	_, err := s.Load()
	require.NoError(t, err)

	require.NoError(t, s.Save([]engine.Binding{{Text: "new", Chord: "ctrl+n", Secret: "pw"}}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "ctrl+p")
	assert.Empty(t, s.Unresolved())
}

func TestCheckSecretFree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, `[{"secret":"offline","hotkey":"ctrl+o"}]`)
	s := New(path, nil)
	_, err := s.Load()
	require.NoError(t, err)

	bindings := []engine.Binding{
		{Text: "x", Chord: "ctrl+x"},
		{Text: "pw", Chord: "ctrl+p", Secret: "work"},
	}

	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{"unused name", "home", false},
		{"name of a loaded snippet", "work", true},
		{"name of a snippet that was not loaded", "offline", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.CheckSecretFree(bindings, tt.secret)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrSecretInUse)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestKeyringSecrets(t *testing.T) {
	secrets := NewKeyringSecrets(keyring.NewArrayKeyring(nil), "test")

	_, err := secrets.Get("nope")
	require.ErrorIs(t, err, ErrSecretNotFound)

	require.NoError(t, secrets.Set("a", "value"))
	v, err := secrets.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "value", v)

	require.NoError(t, secrets.Remove("a"))
	require.NoError(t, secrets.Remove("a"), "removing a missing secret is not an error")
}

func TestStoreIsAPersister(t *testing.T) {
	var _ engine.Persister = New("settings.json", nil)
}

func TestWatchReloadsExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := New(path, nil)
	require.NoError(t, s.Save([]engine.Binding{{Text: "mine", Chord: "ctrl+a"}}))

	var mu sync.Mutex
	var reloads [][]engine.Binding
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Watch(ctx, func(b []engine.Binding) {
		mu.Lock()
		reloads = append(reloads, b)
		mu.Unlock()
	}))

	// Our own write must not trigger a reload.
	require.NoError(t, s.Save([]engine.Binding{{Text: "mine again", Chord: "ctrl+a"}}))
	time.Sleep(3 * watchDebounce)
	mu.Lock()
	assert.Empty(t, reloads)
	mu.Unlock()

	writeFile(t, path, `[{"text": "theirs", "hotkey": "alt+t"}]`)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reloads) > 0
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []engine.Binding{{Text: "theirs", Chord: "alt+t"}}, reloads[len(reloads)-1])
}

func TestReleaseSecretKeepsSharedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	writeFile(t, path, `[{"secret":"offline","hotkey":"ctrl+o"}]`)
	s := New(path, nil)
	_, err := s.Load()
	require.NoError(t, err)

	secrets := NewKeyringSecrets(keyring.NewArrayKeyring(nil), "test")
	for _, name := range []string{"offline", "work", "home"} {
		require.NoError(t, secrets.Set(name, name+"-value"))
	}
	remaining := []engine.Binding{{Text: "work-value", Chord: "ctrl+w", Secret: "work"}}

	require.NoError(t, s.ReleaseSecret(secrets, remaining, "work"))
	require.NoError(t, s.ReleaseSecret(secrets, remaining, "offline"))
	require.NoError(t, s.ReleaseSecret(secrets, remaining, "home"))
	require.NoError(t, s.ReleaseSecret(secrets, remaining, ""))

	_, err = secrets.Get("work")
	require.NoError(t, err, "still bound")
	_, err = secrets.Get("offline")
	require.NoError(t, err, "kept for the record that was not loaded")
	_, err = secrets.Get("home")
	require.ErrorIs(t, err, ErrSecretNotFound)
}
