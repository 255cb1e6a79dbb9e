package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.GetConfigPath())
	assert.True(t, cfg.UseNotifications)
	assert.Equal(t, DefaultCaptureBackend, cfg.CaptureBackend)
	assert.Equal(t, filepath.Join(filepath.Dir(path), DefaultBindingsFile), cfg.BindingsPath())
	assert.Equal(t, 2*time.Second, cfg.HookStartTimeout())

	info, err := os.Stat(path)
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestLoadFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"use_notifications": false, "auto_paste": true}`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.UseNotifications)
	assert.True(t, cfg.AutoPaste)
	assert.Equal(t, DefaultBindingsFile, cfg.BindingsFile)
	assert.Equal(t, DefaultKeyringService, cfg.KeyringService)
	assert.Equal(t, DefaultHookStartTimeout, cfg.HookStartTimeoutMS)

	// The file is upgraded in place, keeping the user's values.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, missingKeys(data))
	assert.False(t, gjson.GetBytes(data, "use_notifications").Bool())
	assert.True(t, gjson.GetBytes(data, "auto_paste").Bool())
	assert.Equal(t, DefaultCaptureBackend, gjson.GetBytes(data, "capture_backend").String())
}

func TestLoadLeavesCompleteFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	_, err := Load(path)
	require.NoError(t, err)

	custom := `{"use_notifications":true,"bindings_file":"a.json","capture_backend":"hook",` +
		`"hook_start_timeout_ms":900,"auto_paste":false,"restore_clipboard":false,` +
		`"watch_bindings_file":false,"keyring_service":"X"}`
	require.NoError(t, os.WriteFile(path, []byte(custom), 0600))

	_, err = Load(path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
}

func TestMissingKeys(t *testing.T) {
	assert.Equal(t, []string{"hook_start_timeout_ms", "watch_bindings_file"},
		missingKeys([]byte(`{"use_notifications":true,"bindings_file":"b","capture_backend":"auto",`+
			`"auto_paste":true,"restore_clipboard":true,"keyring_service":"k"}`)))
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, err := Load(path)
	require.NoError(t, err)

	cfg.CaptureBackend = "grab"
	cfg.HookStartTimeoutMS = 500
	cfg.BindingsFile = "snips.json"
	require.NoError(t, cfg.Save())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "grab", again.CaptureBackend)
	assert.Equal(t, 500*time.Millisecond, again.HookStartTimeout())
	assert.Equal(t, filepath.Join(filepath.Dir(path), "snips.json"), again.BindingsPath())
}

func TestBindingsPathKeepsAbsolute(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "elsewhere.json")
	cfg := Default()
	cfg.configPath = filepath.Join(t.TempDir(), "config.json")
	cfg.BindingsFile = abs

	assert.Equal(t, abs, cfg.BindingsPath())
}

func TestCreateDefaultConfigDoesNotOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"capture_backend":"none"}`), 0600))

	require.NoError(t, CreateDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"capture_backend":"none"}`, string(data))
}
