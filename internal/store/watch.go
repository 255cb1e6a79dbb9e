package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/TanaroSch/hotkey-snippets/internal/engine"
)

// watchDebounce collapses the burst of events an editor produces on save.
const watchDebounce = 200 * time.Millisecond

// Watch calls onChange with the reloaded bindings whenever the file is
// changed by someone other than this store. It watches the parent directory
// so atomic replaces are seen. Watching stops when ctx ends.
func (s *Store) Watch(ctx context.Context, onChange func([]engine.Binding)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch '%s': %w", dir, err)
	}

	target := filepath.Clean(s.path)
	fire := make(chan struct{}, 1)

	go func() {
		defer w.Close()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("RECOVERED FROM PANIC IN BINDINGS WATCHER: %v", r)
			}
		}()

		var timer *time.Timer
		for {
			select {
			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("Warning: bindings watcher error: %v", err)
			case <-fire:
				s.reloadIfChanged(onChange)
			}
		}
	}()

	log.Printf("Watching '%s' for external changes.", s.path)
	return nil
}

func (s *Store) reloadIfChanged(onChange func([]engine.Binding)) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("Warning: could not read changed bindings file '%s': %v", s.path, err)
		}
		return
	}
	if s.wroteLast(data) {
		return
	}
	log.Printf("Bindings file '%s' changed on disk, reloading.", s.path)
	onChange(s.parse(data))
}
