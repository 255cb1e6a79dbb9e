//go:build windows

package ui

import (
	"fmt"
	"syscall"
	"unsafe"
)

const swShowNormal = 1

var (
	shell32           = syscall.NewLazyDLL("shell32.dll")
	procShellExecuteW = shell32.NewProc("ShellExecuteW")
)

// openFileInDefaultApp asks the shell to "open" filePath.
func openFileInDefaultApp(filePath string) error {
	lpVerb, err := syscall.UTF16PtrFromString("open")
	if err != nil {
		return err
	}
	lpFile, err := syscall.UTF16PtrFromString(filePath)
	if err != nil {
		return fmt.Errorf("failed to convert file path to UTF16Ptr: %w", err)
	}

	ret, _, callErr := procShellExecuteW.Call(
		0,
		uintptr(unsafe.Pointer(lpVerb)),
		uintptr(unsafe.Pointer(lpFile)),
		0,
		0,
		uintptr(swShowNormal),
	)

	// Values > 32 indicate success (per ShellExecute documentation)
	if ret <= 32 {
		if callErr != nil && callErr.Error() != "The operation completed successfully." {
			return fmt.Errorf("ShellExecuteW failed with return code %d: %w", ret, callErr)
		}
		return fmt.Errorf("ShellExecuteW failed with return code %d", ret)
	}
	return nil
}
