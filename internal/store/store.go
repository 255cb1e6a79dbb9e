// Package store reads and writes the bindings file.
//
// The file is a JSON array of {"text", "hotkey"} records, or
// {"secret", "hotkey"} for snippets whose text lives in the OS keyring.
// Loading is tolerant: bad records are skipped one at a time.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/TanaroSch/hotkey-snippets/internal/engine"
	"github.com/TanaroSch/hotkey-snippets/internal/keys"
)

// Store is the bindings file at a fixed path. It implements engine.Persister.
type Store struct {
	path    string
	secrets SecretStore

	mu          sync.Mutex
	lastWritten []byte
	// unresolved holds secret records whose text could not be read from the
	// keyring. They are written back on every Save so a keyring outage does
	// not delete them.
	unresolved []record
}

// unresolvedSecret reports a secret record that is valid but whose text is
// unavailable right now.
type unresolvedSecret struct {
	rec record
	err error
}

func (u *unresolvedSecret) Error() string {
	return fmt.Sprintf("secret '%s': %v", u.rec.Secret, u.err)
}

func (u *unresolvedSecret) Unwrap() error { return u.err }

// record is the on-disk shape of one binding.
type record struct {
	Text   string `json:"text,omitempty"`
	Secret string `json:"secret,omitempty"`
	Hotkey string `json:"hotkey"`
}

// New creates a store for path. secrets may be nil, in which case secret
// records are kept in the file but not loaded.
func New(path string, secrets SecretStore) *Store {
	return &Store{path: path, secrets: secrets}
}

// Path returns the bindings file path.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the bindings file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the bindings file. A missing file yields an empty list and no
// error. A file that is not a JSON array is copied to <file>.bak and treated
// as empty.
func (s *Store) Load() ([]engine.Binding, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("Bindings file '%s' not found, starting empty.", s.path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bindings file '%s': %w", s.path, err)
	}
	return s.parse(data), nil
}

func (s *Store) parse(data []byte) []engine.Binding {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	root := gjson.ParseBytes(data)
	if !gjson.ValidBytes(data) || !root.IsArray() {
		backup := s.path + ".bak"
		if err := os.WriteFile(backup, data, 0600); err != nil {
			log.Printf("Warning: bindings file '%s' is not a JSON array and could not be backed up: %v", s.path, err)
		} else {
			log.Printf("Warning: bindings file '%s' is not a JSON array; saved a copy to '%s' and starting empty.", s.path, backup)
		}
		s.setUnresolved(nil)
		return nil
	}

	var (
		bindings   []engine.Binding
		unresolved []record
	)
	root.ForEach(func(key, value gjson.Result) bool {
		b, err := s.parseRecord(value)
		var u *unresolvedSecret
		if errors.As(err, &u) {
			log.Printf("Warning: bindings record %d not loaded, kept in file: %v", key.Int(), err)
			unresolved = append(unresolved, u.rec)
			return true
		}
		if err != nil {
			log.Printf("Skipping bindings record %d: %v", key.Int(), err)
			return true
		}
		bindings = append(bindings, b)
		return true
	})
	s.setUnresolved(unresolved)
	log.Printf("Loaded %d bindings from '%s'.", len(bindings), s.path)
	return bindings
}

func (s *Store) setUnresolved(recs []record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unresolved = recs
}

// Unresolved returns the names of secret snippets kept in the file whose
// text could not be read at the last load.
func (s *Store) Unresolved() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.unresolved))
	for _, r := range s.unresolved {
		names = append(names, r.Secret)
	}
	return names
}

func (s *Store) parseRecord(value gjson.Result) (engine.Binding, error) {
	if !value.IsObject() {
		return engine.Binding{}, errors.New("not an object")
	}

	hk := value.Get("hotkey")
	if hk.Type != gjson.String {
		return engine.Binding{}, errors.New("missing or non-string \"hotkey\"")
	}
	chord, err := keys.ParseBindableChord(hk.String())
	if err != nil {
		return engine.Binding{}, err
	}

	if secret := value.Get("secret"); secret.Exists() {
		if secret.Type != gjson.String || secret.String() == "" {
			return engine.Binding{}, errors.New("non-string or empty \"secret\"")
		}
		rec := record{Secret: secret.String(), Hotkey: chord}
		if s.secrets == nil {
			return engine.Binding{}, &unresolvedSecret{rec: rec, err: errors.New("no keyring is open")}
		}
		text, err := s.secrets.Get(secret.String())
		if err != nil {
			return engine.Binding{}, &unresolvedSecret{rec: rec, err: err}
		}
		if text == "" {
			return engine.Binding{}, &unresolvedSecret{rec: rec, err: engine.ErrEmptyText}
		}
		return engine.Binding{Text: text, Chord: chord, Secret: secret.String()}, nil
	}

	text := value.Get("text")
	if text.Type != gjson.String {
		return engine.Binding{}, errors.New("missing or non-string \"text\"")
	}
	if text.String() == "" {
		return engine.Binding{}, engine.ErrEmptyText
	}
	return engine.Binding{Text: text.String(), Chord: chord}, nil
}

// Encode renders bindings in the on-disk format: two-space indent, no HTML
// escaping, secret snippets written by name only.
func Encode(bindings []engine.Binding) ([]byte, error) {
	return encodeRecords(toRecords(bindings))
}

func toRecords(bindings []engine.Binding) []record {
	records := make([]record, 0, len(bindings))
	for _, b := range bindings {
		r := record{Hotkey: b.Chord}
		if b.Secret != "" {
			r.Secret = b.Secret
		} else {
			r.Text = b.Text
		}
		records = append(records, r)
	}
	return records
}

func encodeRecords(records []record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save replaces the bindings file atomically (temp file + rename, 0600).
// Unresolved secret records from the last load follow the bindings, unless a
// binding now uses the same secret name.
func (s *Store) Save(bindings []engine.Binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := toRecords(bindings)
	kept := s.unresolved[:0]
	for _, r := range s.unresolved {
		if !SecretInUse(bindings, r.Secret) {
			kept = append(kept, r)
		}
	}
	s.unresolved = kept
	records = append(records, kept...)
	data, err := encodeRecords(records)
	if err != nil {
		return fmt.Errorf("failed to encode bindings: %w", err)
	}

	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("failed to write bindings file '%s': %w", s.path, err)
	}
	s.lastWritten = data
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// wroteLast reports whether data is exactly what this store last saved.
func (s *Store) wroteLast(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastWritten != nil && bytes.Equal(s.lastWritten, data)
}
