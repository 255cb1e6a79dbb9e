package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TanaroSch/hotkey-snippets/internal/engine"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "hello", "hello"},
		{"whitespace flattened", "line one\n\tline  two", "line one line two"},
		{"exactly limit", strings.Repeat("a", previewLen), strings.Repeat("a", previewLen)},
		{"truncated", strings.Repeat("b", previewLen+5), strings.Repeat("b", previewLen-1) + "…"},
		{"multibyte", strings.Repeat("你", previewLen+1), strings.Repeat("你", previewLen-1) + "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preview(tt.in))
		})
	}
}

func TestMenuTitle(t *testing.T) {
	assert.Equal(t, "cmd+y  hello world", MenuTitle(engine.Binding{Text: "hello\nworld", Chord: "cmd+y"}))
	assert.Equal(t, "ctrl+p  [secret: pw]", MenuTitle(engine.Binding{Text: "hunter2", Chord: "ctrl+p", Secret: "pw"}))
}

func TestValidateSecretName(t *testing.T) {
	require.NoError(t, ValidateSecretName("work_password"))
	require.Error(t, ValidateSecretName(""))
	require.Error(t, ValidateSecretName("has space"))
	require.Error(t, ValidateSecretName("a{b}"))
}

func TestNotificationLevels(t *testing.T) {
	var shown []string
	n := NewNotificationManager(false, "test", nil)
	n.notify = func(title, message string) error {
		shown = append(shown, title)
		return nil
	}

	n.Show(LevelInfo, "copied", "quiet")
	n.Show(LevelWarn, "warn", "loud")
	n.Show(LevelError, "error", "loud")

	assert.Equal(t, []string{"warn", "error"}, shown)

	n.useNotifications = true
	n.notify = func(title, message string) error { return errors.New("no daemon") }
	n.Show(LevelInfo, "copied", "errors are logged, not returned")
}

func TestOpenInDefaultAppMissingFile(t *testing.T) {
	err := OpenInDefaultApp(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
