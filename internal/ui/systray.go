package ui

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/getlantern/systray"

	"github.com/TanaroSch/hotkey-snippets/internal/engine"
)

// previewLen caps how much snippet text appears in a menu title.
const previewLen = 40

// TrayActions are the callbacks the tray invokes. Index arguments are
// registry indices. Nil callbacks hide or disable their menu items.
type TrayActions struct {
	Copy           func(index int)
	Rebind         func(index int)
	Delete         func(index int)
	AddSnippet     func()
	AddSecret      func()
	CancelRecord   func()
	RestoreClip    func()
	Reload         func()
	OpenBindings   func()
	Restart        func()
	Quit           func()
}

// slot is one reusable entry of the bindings submenu. systray cannot remove
// menu items, so surplus slots are hidden instead.
type slot struct {
	item   *systray.MenuItem
	copy   *systray.MenuItem
	rebind *systray.MenuItem
	del    *systray.MenuItem
}

// Tray is the system tray control surface.
type Tray struct {
	version      string
	embeddedIcon []byte
	actions      TrayActions

	mu         sync.Mutex
	ready      bool
	bindings   []engine.Binding
	status     string
	canRecord  bool
	canRestore bool

	miStatus   *systray.MenuItem
	miBindings *systray.MenuItem
	miEmpty    *systray.MenuItem
	miCancel   *systray.MenuItem
	miRestore  *systray.MenuItem
	slots      []*slot
}

// NewTray creates the tray. canRecord is false when the capture source
// cannot record key presses; rebinding then asks for a typed chord.
func NewTray(version string, embeddedIcon []byte, canRecord bool, actions TrayActions) *Tray {
	return &Tray{
		version:      version,
		embeddedIcon: embeddedIcon,
		actions:      actions,
		canRecord:    canRecord,
		status:       "Listening",
	}
}

// Run initializes and starts the system tray. It blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	title := fmt.Sprintf("Hotkey Snippets %s", t.version)
	systray.SetTitle("")
	systray.SetTooltip(title)
	if len(t.embeddedIcon) > 0 {
		systray.SetIcon(t.embeddedIcon)
	} else {
		log.Println("Warning: No embedded icon data to set for systray.")
	}

	miVersion := systray.AddMenuItem(fmt.Sprintf("Version: %s", t.version), "Hotkey Snippets version")
	miVersion.Disable()

	t.mu.Lock()
	t.miStatus = systray.AddMenuItem(t.status, "Capture status")
	t.miStatus.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	t.mu.Lock()
	t.miBindings = systray.AddMenuItem("Snippets", "Bound snippets")
	t.miEmpty = t.miBindings.AddSubMenuItem("(No snippets defined)", "Add one with 'Add Snippet...'")
	t.miEmpty.Disable()
	t.mu.Unlock()

	miAdd := systray.AddMenuItem("Add Snippet...", "Enter text, then press the hotkey for it")
	miAddSecret := systray.AddMenuItem("Add Secret Snippet...", "Store the text in the OS keyring")

	t.mu.Lock()
	t.miCancel = systray.AddMenuItem("Cancel Recording", "Stop waiting for a key combination")
	t.miCancel.Disable()
	t.miRestore = systray.AddMenuItem("Restore Previous Clipboard", "Put back what was on the clipboard before the last snippet")
	t.miRestore.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	miReload := systray.AddMenuItem("Reload Snippets", "Re-read the bindings file")
	miOpen := systray.AddMenuItem("Open Bindings File", "Open the bindings file in the default editor")
	miRestart := systray.AddMenuItem("Restart Application", "Restart the application")
	systray.AddSeparator()
	miQuit := systray.AddMenuItem("Quit", "Exit the application")

	t.onClick(miAdd, "Add Snippet", t.actions.AddSnippet)
	t.onClick(miAddSecret, "Add Secret Snippet", t.actions.AddSecret)
	t.onClick(t.miCancel, "Cancel Recording", t.actions.CancelRecord)
	t.onClick(t.miRestore, "Restore Previous Clipboard", t.actions.RestoreClip)
	t.onClick(miReload, "Reload Snippets", t.actions.Reload)
	t.onClick(miOpen, "Open Bindings File", t.actions.OpenBindings)
	t.onClick(miRestart, "Restart Application", t.actions.Restart)

	go func() {
		<-miQuit.ClickedCh
		log.Println("Quit menu item clicked.")
		if t.actions.Quit != nil {
			t.actions.Quit()
		}
		systray.Quit()
	}()

	t.mu.Lock()
	t.ready = true
	t.renderLocked()
	t.mu.Unlock()

	log.Println("Systray ready and menu configured.")
}

func (t *Tray) onExit() {
	log.Println("Systray exiting.")
}

// onClick runs fn for every click on item. A nil fn disables the item.
func (t *Tray) onClick(item *systray.MenuItem, name string, fn func()) {
	if fn == nil {
		item.Disable()
		return
	}
	go func() {
		for range item.ClickedCh {
			log.Printf("%s menu item clicked.", name)
			safeCall(name, fn)
		}
	}()
}

func safeCall(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("RECOVERED FROM PANIC IN MENU HANDLER (%s): %v", name, r)
		}
	}()
	fn()
}

// SetBindings re-renders the snippets submenu.
func (t *Tray) SetBindings(bindings []engine.Binding) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bindings = append([]engine.Binding(nil), bindings...)
	if t.ready {
		t.renderLocked()
	}
}

// SetStatus updates the disabled status line and the Cancel Recording item.
func (t *Tray) SetStatus(status string, recording bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = status
	if !t.ready {
		return
	}
	t.miStatus.SetTitle(status)
	if recording && t.actions.CancelRecord != nil {
		t.miCancel.Enable()
	} else {
		t.miCancel.Disable()
	}
}

// SetRestoreAvailable enables or disables Restore Previous Clipboard.
func (t *Tray) SetRestoreAvailable(ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.canRestore = ok
	if !t.ready {
		return
	}
	if ok && t.actions.RestoreClip != nil {
		t.miRestore.Enable()
	} else {
		t.miRestore.Disable()
	}
}

func (t *Tray) renderLocked() {
	t.miStatus.SetTitle(t.status)
	if t.canRestore && t.actions.RestoreClip != nil {
		t.miRestore.Enable()
	}

	if len(t.bindings) == 0 {
		t.miEmpty.Show()
	} else {
		t.miEmpty.Hide()
	}

	for len(t.slots) < len(t.bindings) {
		t.slots = append(t.slots, t.newSlotLocked(len(t.slots)))
	}
	for i, s := range t.slots {
		if i >= len(t.bindings) {
			s.item.Hide()
			continue
		}
		b := t.bindings[i]
		s.item.SetTitle(MenuTitle(b))
		s.item.SetTooltip(fmt.Sprintf("Snippet %d (%s)", i+1, b.Chord))
		s.item.Show()
	}
}

func (t *Tray) newSlotLocked(index int) *slot {
	s := &slot{item: t.miBindings.AddSubMenuItem("", "")}
	s.copy = s.item.AddSubMenuItem("Copy Now", "Copy this snippet to the clipboard")
	rebindTip := "Press a new key combination for this snippet"
	if !t.canRecord {
		rebindTip = "Type a new key combination for this snippet"
	}
	s.rebind = s.item.AddSubMenuItem("Change Hotkey...", rebindTip)
	s.del = s.item.AddSubMenuItem("Delete...", "Remove this snippet")

	t.onIndexClick(s.copy, "Copy Now", index, t.actions.Copy)
	t.onIndexClick(s.rebind, "Change Hotkey", index, t.actions.Rebind)
	t.onIndexClick(s.del, "Delete", index, t.actions.Delete)
	return s
}

func (t *Tray) onIndexClick(item *systray.MenuItem, name string, index int, fn func(int)) {
	if fn == nil {
		item.Disable()
		return
	}
	t.onClick(item, fmt.Sprintf("%s (snippet %d)", name, index+1), func() { fn(index) })
}

// MenuTitle renders a binding as "chord  text preview". Secret snippets show
// only their keyring name.
func MenuTitle(b engine.Binding) string {
	if b.Secret != "" {
		return fmt.Sprintf("%s  [secret: %s]", b.Chord, b.Secret)
	}
	return fmt.Sprintf("%s  %s", b.Chord, Preview(b.Text))
}

// Preview flattens whitespace and truncates text for menu display.
func Preview(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(flat) <= previewLen {
		return flat
	}
	runes := []rune(flat)
	return string(runes[:previewLen-1]) + "…"
}

// IsDevMode checks if the application is running from a go run build.
func IsDevMode() bool {
	execPath, err := os.Executable()
	if err != nil {
		log.Printf("Warning: Could not get executable path in IsDevMode: %v", err)
		return false
	}
	if strings.Contains(execPath, string(filepath.Separator)+"go-build") {
		return true
	}
	cleanedExecDir := filepath.Clean(filepath.Dir(execPath))
	return strings.HasPrefix(cleanedExecDir, filepath.Clean(os.TempDir()))
}

// RestartApplication starts a fresh copy of the executable and exits.
func RestartApplication() {
	log.Println("Attempting application restart...")
	if IsDevMode() {
		ShowAdminNotification(LevelWarn, "Manual Restart Needed", "App running in dev mode. Please stop and run it again manually.")
		return
	}
	execPath, err := os.Executable()
	if err != nil {
		ShowAdminNotification(LevelError, "Restart Error", fmt.Sprintf("Failed to get executable path. Error: %v", err))
		return
	}
	cmd := exec.Command(execPath, os.Args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if cwd, err := os.Getwd(); err == nil {
		cmd.Dir = cwd
	}
	if err := cmd.Start(); err != nil {
		ShowAdminNotification(LevelError, "Restart Error", fmt.Sprintf("Failed to start new application process: %v", err))
		return
	}
	log.Println("Successfully started new process. Exiting current process now.")
	systray.Quit()
	os.Exit(0)
}
