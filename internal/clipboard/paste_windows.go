//go:build windows

package clipboard

import (
	"errors"
	"fmt"
	"log"
	"os/exec"
	"syscall"
	"unsafe"
)

// Windows constants for keyboard events
const (
	inputKeyboard  = 1
	keyeventfKeyUp = 0x0002
	vkControl      = 0x11
	vkV            = 0x56
)

// keyboardInput mirrors the Win32 INPUT structure for SendInput.
type keyboardInput struct {
	Type uint32
	Ki   struct {
		WVk         uint16
		WScan       uint16
		DwFlags     uint32
		Time        uint32
		DwExtraInfo uintptr
		Padding1    uint32
		Padding2    uint32
		Padding3    uint32
	}
}

var user32 = syscall.NewLazyDLL("user32.dll")

func keyInput(vk uint16, flags uint32) keyboardInput {
	var in keyboardInput
	in.Type = inputKeyboard
	in.Ki.WVk = vk
	in.Ki.DwFlags = flags
	return in
}

// pasteWithSendInput sends Ctrl down, V down, V up, Ctrl up in one call.
func pasteWithSendInput() error {
	inputs := []keyboardInput{
		keyInput(vkControl, 0),
		keyInput(vkV, 0),
		keyInput(vkV, keyeventfKeyUp),
		keyInput(vkControl, keyeventfKeyUp),
	}

	ret, _, err := user32.NewProc("SendInput").Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		uintptr(unsafe.Sizeof(inputs[0])),
	)
	if ret != uintptr(len(inputs)) {
		return fmt.Errorf("SendInput sent %d inputs instead of %d: %v", ret, len(inputs), err)
	}
	return nil
}

func pasteWithKeybdEvent() error {
	keybdEvent := user32.NewProc("keybd_event")
	if err := keybdEvent.Find(); err != nil {
		return err
	}
	keybdEvent.Call(vkControl, 0, 0, 0)
	keybdEvent.Call(vkV, 0, 0, 0)
	keybdEvent.Call(vkV, 0, keyeventfKeyUp, 0)
	keybdEvent.Call(vkControl, 0, keyeventfKeyUp, 0)
	return nil
}

func pasteWithPowershell() error {
	psScript := `
	Add-Type -AssemblyName System.Windows.Forms
	[System.Windows.Forms.SendKeys]::SendWait("^v")
	`
	return exec.Command("powershell", "-Command", psScript).Run()
}

// simulatePlatformPaste tries multiple methods to simulate Ctrl+V in Windows
func simulatePlatformPaste() error {
	methods := []struct {
		name string
		fn   func() error
	}{
		{"SendInput", pasteWithSendInput},
		{"keybd_event", pasteWithKeybdEvent},
		{"PowerShell", pasteWithPowershell},
	}
	for _, m := range methods {
		if err := m.fn(); err != nil {
			log.Printf("%s paste failed: %v", m.name, err)
			continue
		}
		log.Printf("%s paste completed.", m.name)
		return nil
	}
	return errors.New("all paste methods failed")
}
