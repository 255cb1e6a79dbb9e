package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/TanaroSch/hotkey-snippets/internal/clipboard"
	"github.com/TanaroSch/hotkey-snippets/internal/config"
	"github.com/TanaroSch/hotkey-snippets/internal/engine"
	"github.com/TanaroSch/hotkey-snippets/internal/hotkey"
	"github.com/TanaroSch/hotkey-snippets/internal/keys"
	"github.com/TanaroSch/hotkey-snippets/internal/resources"
	"github.com/TanaroSch/hotkey-snippets/internal/store"
	"github.com/TanaroSch/hotkey-snippets/internal/ui"
)

const appName = "Hotkey Snippets"

// Application represents the main application
type Application struct {
	config   *config.Config
	version  string
	iconData []byte

	secrets store.SecretStore
	store   *store.Store
	writer  *clipboard.Writer
	engine  *engine.Engine
	source  hotkey.Source
	events  <-chan keys.Event
	tray    *ui.Tray

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
	stopOnce    sync.Once
}

// New creates a new application instance
func New(cfg *config.Config, version string) *Application {
	a := &Application{
		config:  cfg,
		version: version,
	}

	var err error
	a.iconData, err = resources.GetIcon()
	if err != nil {
		log.Printf("Warning: Failed to load embedded icon: %v", err)
	}
	ui.InitGlobalNotifications(cfg.UseNotifications, appName, a.iconData)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.secrets = OpenSecrets(cfg)
	a.store = store.New(cfg.BindingsPath(), a.secrets)

	bindings, err := LoadBindings(a.store)
	if err != nil {
		log.Printf("Error loading bindings: %v", err)
		ui.ShowAdminNotification(ui.LevelError, "Bindings Error", err.Error())
	}

	a.writer = clipboard.NewWriter(clipboard.Options{
		AutoPaste:        cfg.AutoPaste,
		RestoreClipboard: cfg.RestoreClipboard,
		OnRestoreChange:  a.onRestoreChange,
	})

	a.engine = engine.New(engine.Options{
		Bindings:       bindings,
		Clipboard:      a.writer,
		Persister:      a.store,
		OnDispatch:     a.onDispatch,
		OnPersistError: a.onPersistError,
	})

	return a
}

// Run starts the application. It blocks until the tray quits.
func (a *Application) Run() {
	a.startSource()

	canRecord := a.source != nil && a.source.SupportsRecording()
	a.tray = ui.NewTray(a.version, a.iconData, canRecord, ui.TrayActions{
		Copy:         a.onCopy,
		Rebind:       a.onRebind,
		Delete:       a.onDelete,
		AddSnippet:   a.onAddSnippet,
		AddSecret:    a.onAddSecret,
		CancelRecord: a.onCancelRecording,
		RestoreClip:  a.onRestoreClipboard,
		Reload:       a.onReload,
		OpenBindings: a.onOpenBindings,
		Restart:      a.onRestart,
		Quit:         a.Shutdown,
	})
	a.tray.SetBindings(a.engine.Snapshot())
	if a.source == nil {
		a.tray.SetStatus("Hotkeys disabled (editor only)", false)
	}

	a.unsubscribe = a.engine.Subscribe(a.onChange)

	if a.events != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.engine.Run(a.ctx, a.events); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Engine stopped: %v", err)
			}
		}()
	}

	if a.config.WatchBindingsFile {
		if err := a.store.Watch(a.ctx, a.onExternalEdit); err != nil {
			log.Printf("Warning: not watching bindings file: %v", err)
		}
	}

	a.tray.Run()
	a.Shutdown()
}

// startSource starts the configured key source. Failure leaves the
// application in editor-only mode.
func (a *Application) startSource() {
	src, events, err := hotkey.StartSource(a.ctx, a.config.CaptureBackend, a.config.HookStartTimeout())
	switch {
	case err == nil:
		a.source, a.events = src, events
		a.syncGrabs(a.engine.Snapshot())
		return
	case errors.Is(err, hotkey.ErrCaptureDisabled):
		log.Println("Key capture disabled by configuration. Running in editor-only mode.")
		ui.ShowAdminNotification(ui.LevelInfo, "Hotkeys Disabled", "Key capture is turned off in config.json. Snippets can still be copied from the menu.")
	case errors.Is(err, hotkey.ErrPermissionDenied):
		log.Printf("Warning: keyboard access denied: %v", err)
		ui.ShowAdminNotification(ui.LevelWarn, "Hotkeys Unavailable",
			"Could not get keyboard access (grant Accessibility/Input Monitoring, or use an X11 session). Snippets can still be copied from the menu.")
	default:
		log.Printf("Error starting key source: %v", err)
		ui.ShowAdminNotification(ui.LevelError, "Hotkeys Unavailable", err.Error())
	}
}

// syncGrabs keeps per-chord grabs in step with the registry.
func (a *Application) syncGrabs(bindings []engine.Binding) {
	if syncer, ok := a.source.(hotkey.ChordSyncer); ok {
		syncer.Sync(chords(bindings))
	}
}

// Shutdown stops capture, flushes pending saves and closes the tray.
func (a *Application) Shutdown() {
	a.stopOnce.Do(func() {
		log.Println("Shutting down...")
		a.cancel()
		if a.source != nil {
			if err := a.source.Stop(); err != nil {
				log.Printf("Error stopping key source: %v", err)
			}
		}
		a.wg.Wait()
		if a.unsubscribe != nil {
			a.unsubscribe()
		}
		a.engine.Close()
		a.writer.Wait()
		if a.tray != nil {
			a.tray.Quit()
		}
	})
}

func (a *Application) onChange(c engine.Change) {
	switch c.Kind {
	case engine.Added, engine.Removed, engine.ChordReplaced, engine.Reloaded:
		snapshot := a.engine.Snapshot()
		a.syncGrabs(snapshot)
		if a.tray != nil {
			a.tray.SetBindings(snapshot)
		}
		if c.Kind == engine.ChordReplaced {
			ui.ShowAdminNotification(ui.LevelInfo, "Hotkey Changed", fmt.Sprintf("Snippet %d is now on %s", c.Index+1, c.Binding.Chord))
		}
	case engine.RecordingStarted:
		if a.tray != nil {
			a.tray.SetStatus("Recording: press a key combination...", true)
		}
	case engine.RecordingEnded:
		if a.tray != nil {
			a.tray.SetStatus("Listening", false)
		}
		if c.Cancelled && !c.Capture {
			ui.ShowAdminNotification(ui.LevelInfo, "Recording Cancelled", "The hotkey was not changed.")
		}
	}
}

func (a *Application) onDispatch(d engine.Dispatch) {
	if d.Err != nil {
		log.Printf("Error copying snippet %d: %v", d.Index, d.Err)
		ui.ShowAdminNotification(ui.LevelWarn, "Clipboard Error", d.Err.Error())
		return
	}
	ui.ShowSnippetNotification("Snippet Copied", ui.MenuTitle(d.Binding))
}

func (a *Application) onPersistError(err error) {
	log.Printf("Warning: %v", err)
	ui.ShowAdminNotification(ui.LevelWarn, "Save Failed", fmt.Sprintf("Changes are kept in memory but could not be written to %s: %v", a.store.Path(), err))
}

func (a *Application) onRestoreChange(canRestore bool) {
	if a.tray != nil {
		a.tray.SetRestoreAvailable(canRestore)
	}
}

func (a *Application) onExternalEdit(bindings []engine.Binding) {
	if err := a.engine.ReplaceAll(bindings); err != nil {
		log.Printf("Error applying edited bindings file: %v", err)
		ui.ShowAdminNotification(ui.LevelError, "Reload Failed", err.Error())
		return
	}
	ui.ShowAdminNotification(ui.LevelInfo, "Snippets Reloaded", fmt.Sprintf("%d snippets loaded from %s", len(bindings), a.store.Path()))
}

// binding returns the current binding at index.
func (a *Application) binding(index int) (engine.Binding, bool) {
	snapshot := a.engine.Snapshot()
	if index < 0 || index >= len(snapshot) {
		log.Printf("Snippet %d no longer exists", index)
		return engine.Binding{}, false
	}
	return snapshot[index], true
}

func (a *Application) canRecord() bool {
	return a.source != nil && a.source.SupportsRecording()
}

// chooseChord records the next chord when the source can, and otherwise asks
// for it as text. ok is false when the user gave up.
func (a *Application) chooseChord(current string) (string, bool) {
	if a.canRecord() {
		ui.ShowAdminNotification(ui.LevelInfo, "Set Hotkey", "Press the key combination for this snippet.")
		chord, err := a.engine.CaptureChord(a.ctx)
		if err != nil {
			log.Printf("Chord capture ended: %v", err)
			return "", false
		}
		return chord, true
	}

	typed, err := ui.PromptChord(current)
	if err != nil {
		if !ui.IsCanceled(err) {
			ui.ShowError("Set Hotkey", err.Error())
		}
		return "", false
	}
	chord, err := keys.ParseBindableChord(typed)
	if err != nil {
		ui.ShowError("Invalid Hotkey", err.Error())
		return "", false
	}
	return chord, true
}

func (a *Application) onCopy(index int) {
	b, ok := a.binding(index)
	if !ok {
		return
	}
	a.onDispatch(engine.Dispatch{Index: index, Binding: b, Err: a.writer.WriteText(b.Text)})
}

func (a *Application) onRebind(index int) {
	b, ok := a.binding(index)
	if !ok {
		return
	}
	if a.canRecord() {
		if err := a.engine.RequestRebind(index); err != nil {
			ui.ShowError("Change Hotkey", err.Error())
			return
		}
		ui.ShowAdminNotification(ui.LevelInfo, "Change Hotkey", fmt.Sprintf("Press the new key combination for snippet %d (currently %s).", index+1, b.Chord))
		return
	}
	chord, ok := a.chooseChord(b.Chord)
	if !ok {
		return
	}
	if err := a.engine.ReplaceChordAt(index, chord); err != nil {
		ui.ShowError("Change Hotkey", err.Error())
	}
}

func (a *Application) onDelete(index int) {
	b, ok := a.binding(index)
	if !ok {
		return
	}
	confirmed, err := ui.ConfirmDelete(ui.MenuTitle(b))
	if err != nil {
		log.Printf("Error showing delete confirmation: %v", err)
		return
	}
	if !confirmed {
		log.Printf("Deletion of snippet %d cancelled by user.", index)
		return
	}
	// The list may have changed while the dialog was open.
	if current, ok := a.binding(index); !ok || current != b {
		ui.ShowError("Delete Snippet", "The snippet list changed. Please try again.")
		return
	}
	if err := a.engine.RemoveAt(index); err != nil {
		ui.ShowError("Delete Snippet", err.Error())
		return
	}
	if err := a.store.ReleaseSecret(a.secrets, a.engine.Snapshot(), b.Secret); err != nil {
		log.Printf("Warning: %v", err)
	}
	ui.ShowAdminNotification(ui.LevelInfo, "Snippet Deleted", ui.MenuTitle(b))
}

func (a *Application) onAddSnippet() {
	text, err := ui.PromptSnippetText()
	if err != nil {
		if !ui.IsCanceled(err) {
			ui.ShowError("Add Snippet", err.Error())
		}
		return
	}
	chord, ok := a.chooseChord("")
	if !ok {
		return
	}
	idx, err := a.engine.Add(text, chord)
	if err != nil {
		ui.ShowError("Add Snippet", err.Error())
		return
	}
	ui.ShowAdminNotification(ui.LevelInfo, "Snippet Added", fmt.Sprintf("Snippet %d bound to %s", idx+1, chord))
}

func (a *Application) onAddSecret() {
	if a.secrets == nil {
		ui.ShowError("Add Secret Snippet", "The OS keyring is not available.")
		return
	}
	name, value, err := ui.PromptSecret()
	if err != nil {
		if !ui.IsCanceled(err) {
			ui.ShowError("Add Secret Snippet", err.Error())
		}
		return
	}
	if err := a.store.CheckSecretFree(a.engine.Snapshot(), name); err != nil {
		ui.ShowError("Add Secret Snippet", err.Error())
		return
	}
	chord, ok := a.chooseChord("")
	if !ok {
		return
	}
	// Re-check: the list may have changed while the chord dialog was open.
	if err := a.store.CheckSecretFree(a.engine.Snapshot(), name); err != nil {
		ui.ShowError("Add Secret Snippet", err.Error())
		return
	}
	if err := a.secrets.Set(name, value); err != nil {
		ui.ShowError("Add Secret Snippet", err.Error())
		return
	}
	idx, err := a.engine.AddBinding(engine.Binding{Text: value, Chord: chord, Secret: name})
	if err != nil {
		ui.ShowError("Add Secret Snippet", err.Error())
		if rmErr := a.secrets.Remove(name); rmErr != nil {
			log.Printf("Warning: %v", rmErr)
		}
		return
	}
	ui.ShowAdminNotification(ui.LevelInfo, "Secret Snippet Added", fmt.Sprintf("Snippet %d bound to %s", idx+1, chord))
}

func (a *Application) onCancelRecording() {
	if !a.engine.CancelRebind() {
		log.Println("Cancel Recording clicked, but nothing was being recorded.")
	}
}

func (a *Application) onRestoreClipboard() {
	if a.writer.Restore() {
		ui.ShowAdminNotification(ui.LevelInfo, "Clipboard Restored", "The previous clipboard content has been restored.")
	}
}

func (a *Application) onReload() {
	log.Println("Reloading bindings...")
	bindings, err := a.store.Load()
	if err != nil {
		ui.ShowAdminNotification(ui.LevelError, "Reload Failed", err.Error())
		return
	}
	a.onExternalEdit(bindings)
}

func (a *Application) onOpenBindings() {
	if err := ui.OpenInDefaultApp(a.store.Path()); err != nil {
		log.Printf("Error opening bindings file: %v", err)
		ui.ShowAdminNotification(ui.LevelError, "Open Failed", err.Error())
	}
}

func (a *Application) onRestart() {
	if ui.IsDevMode() {
		ui.RestartApplication()
		return
	}
	a.cancel()
	if a.source != nil {
		if err := a.source.Stop(); err != nil {
			log.Printf("Error stopping key source: %v", err)
		}
	}
	a.engine.Close()
	a.writer.Wait()
	ui.RestartApplication()
}
