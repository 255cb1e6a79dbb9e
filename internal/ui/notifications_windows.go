//go:build windows

package ui

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-toast/toast"
)

func (n *NotificationManager) platformNotify(title, message string) error {
	iconPath := n.toastIcon()

	notification := toast.Notification{
		AppID:   n.appName,
		Title:   title,
		Message: message,
		Icon:    iconPath,
	}

	if err := notification.Push(); err != nil {
		if strings.Contains(err.Error(), "notification platform is unavailable") {
			log.Println("Toast notification failed: Platform unavailable (Notifications might be disabled in Windows Settings).")
		}
		return err
	}
	return nil
}

// toastIcon prefers an icon.png next to the working directory and falls back
// to a temporary copy of the embedded icon.
func (n *NotificationManager) toastIcon() string {
	if _, err := os.Stat("icon.png"); err == nil {
		if wd, err := os.Getwd(); err == nil {
			return filepath.Join(wd, "icon.png")
		}
		return "icon.png"
	}
	if len(n.embeddedIcon) == 0 {
		return ""
	}
	path, err := writeTempIcon(n.embeddedIcon)
	if err != nil {
		log.Printf("Error writing temporary icon: %v", err)
		return ""
	}
	time.AfterFunc(10*time.Second, func() {
		if errRem := os.Remove(path); errRem != nil && !os.IsNotExist(errRem) {
			log.Printf("Error removing temporary icon file %s: %v", path, errRem)
		}
	})
	return path
}

func writeTempIcon(iconData []byte) (string, error) {
	if len(iconData) == 0 {
		return "", errors.New("cannot write empty icon data")
	}
	tmpFile, err := os.CreateTemp("", "hotsnip-icon-*.ico")
	if err != nil {
		return "", err
	}
	defer tmpFile.Close()

	if _, err := tmpFile.Write(iconData); err != nil {
		_ = os.Remove(tmpFile.Name())
		return "", err
	}

	absPath, err := filepath.Abs(tmpFile.Name())
	if err != nil {
		return tmpFile.Name(), nil
	}
	return absPath, nil
}
