package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TanaroSch/hotkey-snippets/internal/engine"
	"github.com/TanaroSch/hotkey-snippets/internal/keys"
	"github.com/TanaroSch/hotkey-snippets/internal/ui"
)

var addSecret string

var addCmd = &cobra.Command{
	Use:   "add <hotkey> <text>...",
	Short: "Bind text to a hotkey",
	Example: `  hotsnip add ctrl+alt+h "hello world"
  hotsnip add --secret work_password ctrl+alt+p 's3cret'`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		text := strings.Join(args[1:], " ")
		if addSecret != "" {
			if err := ui.ValidateSecretName(addSecret); err != nil {
				return err
			}
		}

		s, err := openSession()
		if err != nil {
			return err
		}
		defer closeSession(s, &err)

		idx, err := s.add(args[0], text, addSecret)
		if err != nil {
			return err
		}
		fmt.Printf("Added snippet %d on %s\n", idx+1, s.engine.Snapshot()[idx].Chord)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <number|hotkey>",
	Short: "Remove a snippet by list number or hotkey",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer closeSession(s, &err)

		idx, err := resolveIndex(s.engine.Snapshot(), args[0])
		if err != nil {
			return err
		}
		removed, err := s.remove(idx)
		if err != nil {
			return err
		}
		fmt.Printf("Removed snippet %d (%s)\n", idx+1, removed.Chord)
		return nil
	},
}

var rebindCmd = &cobra.Command{
	Use:   "rebind <number|hotkey> <new-hotkey>",
	Short: "Move a snippet to a different hotkey",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer closeSession(s, &err)

		idx, err := resolveIndex(s.engine.Snapshot(), args[0])
		if err != nil {
			return err
		}
		if err := s.engine.ReplaceChordAt(idx, args[1]); err != nil {
			return err
		}
		fmt.Printf("Snippet %d is now on %s\n", idx+1, s.engine.Snapshot()[idx].Chord)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addSecret, "secret", "s", "", "Store the text in the OS keyring under this name")
	rootCmd.AddCommand(addCmd, removeCmd, rebindCmd)
}

// add binds text to chord. With a secret name the text goes to the keyring
// instead, but only after the chord and the name have been accepted.
func (s *session) add(chord, text, secret string) (int, error) {
	if secret == "" {
		return s.engine.AddBinding(engine.Binding{Text: text, Chord: chord})
	}
	if s.secrets == nil {
		return -1, errors.New("secret snippets need the OS keyring, which is not available")
	}
	canonical, err := keys.ParseBindableChord(chord)
	if err != nil {
		return -1, err
	}
	if err := s.store.CheckSecretFree(s.engine.Snapshot(), secret); err != nil {
		return -1, err
	}
	if err := s.secrets.Set(secret, text); err != nil {
		return -1, err
	}
	idx, err := s.engine.AddBinding(engine.Binding{Text: text, Chord: canonical, Secret: secret})
	if err != nil {
		if rmErr := s.secrets.Remove(secret); rmErr != nil {
			return -1, fmt.Errorf("%w (keyring cleanup failed: %w)", err, rmErr)
		}
		return -1, err
	}
	return idx, nil
}

// remove deletes the snippet at idx and its keyring entry, unless another
// snippet still reads the same entry.
func (s *session) remove(idx int) (engine.Binding, error) {
	removed := s.engine.Snapshot()[idx]
	if err := s.engine.RemoveAt(idx); err != nil {
		return removed, err
	}
	if err := s.store.ReleaseSecret(s.secrets, s.engine.Snapshot(), removed.Secret); err != nil {
		return removed, err
	}
	return removed, nil
}

// closeSession flushes the session and reports a failed save unless the
// command already failed.
func closeSession(s *session, err *error) {
	if cerr := s.close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

// resolveIndex maps a 1-based list number or a hotkey to a registry index.
// For a hotkey shared by several snippets the last one is chosen, the same
// one a key press would copy.
func resolveIndex(bindings []engine.Binding, arg string) (int, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(bindings) {
			return -1, fmt.Errorf("%w: snippet %d (have %d)", engine.ErrIndexOutOfRange, n, len(bindings))
		}
		return n - 1, nil
	}
	chord, err := keys.ParseChord(arg)
	if err != nil {
		return -1, err
	}
	for i := len(bindings) - 1; i >= 0; i-- {
		if bindings[i].Chord == chord {
			return i, nil
		}
	}
	return -1, fmt.Errorf("no snippet is bound to %s", chord)
}
