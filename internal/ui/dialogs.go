package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ncruces/zenity"
)

// DialogTitle prefixes every dialog title.
var DialogTitle = "Hotkey Snippets"

// IsCanceled reports whether err means the user closed a dialog.
func IsCanceled(err error) bool {
	return errors.Is(err, zenity.ErrCanceled)
}

// PromptSnippetText asks for the text of a new snippet.
func PromptSnippetText() (string, error) {
	text, err := zenity.Entry("Snippet text to copy when the hotkey is pressed:",
		zenity.Title(DialogTitle+" - Add Snippet"),
	)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", errors.New("snippet text cannot be empty")
	}
	return text, nil
}

// PromptSecret asks for a keyring entry name and its value.
func PromptSecret() (name, value string, err error) {
	name, err = zenity.Entry("Step 1: Enter a name for the secret snippet\n(e.g., work_password, no spaces/special chars)",
		zenity.Title(DialogTitle+" - Add Secret Snippet"),
	)
	if err != nil {
		return "", "", err
	}
	name = strings.TrimSpace(name)
	if err := ValidateSecretName(name); err != nil {
		return "", "", err
	}

	_, value, err = zenity.Password(
		zenity.Title(DialogTitle + " - Step 2: Enter Secret Value for '" + name + "'"),
	)
	if err != nil {
		return "", "", err
	}
	if value == "" {
		return "", "", errors.New("secret value cannot be empty")
	}
	return name, value, nil
}

// ValidateSecretName rejects names that are awkward as keyring keys.
func ValidateSecretName(name string) error {
	if name == "" || strings.ContainsAny(name, " {}[]()<>|=+*?^$\\./") {
		return fmt.Errorf("invalid secret name (empty or contains spaces/special chars): '%s'", name)
	}
	return nil
}

// PromptChord asks for a chord typed as text, for capture backends that
// cannot record key presses.
func PromptChord(current string) (string, error) {
	return zenity.Entry("Type the key combination (e.g., ctrl+shift+k):",
		zenity.Title(DialogTitle+" - Set Hotkey"),
		zenity.EntryText(current),
	)
}

// ConfirmDelete asks before removing a snippet.
func ConfirmDelete(label string) (bool, error) {
	err := zenity.Question(
		fmt.Sprintf("Delete the snippet '%s'?\n\nThis cannot be undone.", label),
		zenity.Title(DialogTitle+" - Confirm Deletion"),
		zenity.WarningIcon,
		zenity.OKLabel("Delete"),
		zenity.CancelLabel("Cancel"),
	)
	if err == nil {
		return true, nil
	}
	if IsCanceled(err) {
		return false, nil
	}
	return false, err
}

// ShowError shows a modal error dialog.
func ShowError(title, message string) {
	_ = zenity.Error(message, zenity.Title(DialogTitle+" - "+title), zenity.ErrorIcon)
}
