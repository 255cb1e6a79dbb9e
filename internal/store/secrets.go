package store

import (
	"errors"
	"fmt"
	"log"

	"github.com/99designs/keyring"

	"github.com/TanaroSch/hotkey-snippets/internal/engine"
)

var (
	// ErrSecretNotFound is returned when a secret snippet has no keyring entry.
	ErrSecretNotFound = errors.New("secret not found in keyring")
	// ErrSecretInUse is returned when a new secret snippet reuses a name.
	ErrSecretInUse = errors.New("secret name already used by another snippet")
)

// SecretInUse reports whether any binding reads its text from name.
func SecretInUse(bindings []engine.Binding, name string) bool {
	for _, b := range bindings {
		if b.Secret == name {
			return true
		}
	}
	return false
}

// CheckSecretFree fails with ErrSecretInUse when name belongs to one of
// bindings or to a secret record that could not be loaded. Keyring entries
// are shared by name, so reusing one would overwrite the other snippet.
func (s *Store) CheckSecretFree(bindings []engine.Binding, name string) error {
	if SecretInUse(bindings, name) {
		return fmt.Errorf("%w: '%s'", ErrSecretInUse, name)
	}
	for _, other := range s.Unresolved() {
		if other == name {
			return fmt.Errorf("%w: '%s' (not loaded)", ErrSecretInUse, name)
		}
	}
	return nil
}

// ReleaseSecret deletes the keyring entry for name once neither bindings nor
// an unloaded secret record refers to it.
func (s *Store) ReleaseSecret(secrets SecretStore, bindings []engine.Binding, name string) error {
	if name == "" || secrets == nil {
		return nil
	}
	if err := s.CheckSecretFree(bindings, name); err != nil {
		log.Printf("Keeping keyring entry '%s': still referenced.", name)
		return nil
	}
	return secrets.Remove(name)
}

// SecretStore holds the text of secret snippets outside the bindings file.
type SecretStore interface {
	Get(name string) (string, error)
	Set(name, value string) error
	Remove(name string) error
}

// KeyringSecrets keeps secret snippets in the OS keyring.
type KeyringSecrets struct {
	kr      keyring.Keyring
	service string
}

// NewKeyringSecrets wraps an opened keyring. service is only used for labels.
func NewKeyringSecrets(kr keyring.Keyring, service string) *KeyringSecrets {
	return &KeyringSecrets{kr: kr, service: service}
}

func (k *KeyringSecrets) Get(name string) (string, error) {
	item, err := k.kr.Get(name)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: '%s'", ErrSecretNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("error retrieving secret '%s' from keyring: %w", name, err)
	}
	return string(item.Data), nil
}

func (k *KeyringSecrets) Set(name, value string) error {
	err := k.kr.Set(keyring.Item{
		Key:         name,
		Data:        []byte(value),
		Label:       fmt.Sprintf("Snippet %s used by %s", name, k.service),
		Description: "Managed by " + k.service,
	})
	if err != nil {
		return fmt.Errorf("failed to store secret '%s' in keyring: %w", name, err)
	}
	return nil
}

// Remove deletes the keyring entry. A missing entry is not an error.
func (k *KeyringSecrets) Remove(name string) error {
	err := k.kr.Remove(name)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete secret '%s' from keyring: %w", name, err)
	}
	return nil
}
