package ui

import (
	"log"
	"sync"
)

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarn:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// NotificationManager handles showing notifications across platforms
type NotificationManager struct {
	useNotifications bool
	appName          string
	embeddedIcon     []byte
	notify           func(title, message string) error
}

// NewNotificationManager creates a new notification manager
func NewNotificationManager(useNotifications bool, appName string, embeddedIcon []byte) *NotificationManager {
	n := &NotificationManager{
		useNotifications: useNotifications,
		appName:          appName,
		embeddedIcon:     embeddedIcon,
	}
	n.notify = n.platformNotify
	return n
}

// shouldShow decides whether a notification reaches the desktop. Warnings
// and errors are shown even when routine notifications are turned off.
func (n *NotificationManager) shouldShow(level Level) bool {
	return n.useNotifications || level >= LevelWarn
}

// Show displays a desktop notification. Everything is logged regardless.
func (n *NotificationManager) Show(level Level, title, message string) {
	log.Printf("Notification (%s): %s - %s", level, title, message)
	if !n.shouldShow(level) {
		return
	}
	if err := n.notify(title, message); err != nil {
		log.Printf("Error showing notification: %v", err)
	}
}

var (
	globalMu                  sync.RWMutex
	globalNotificationManager *NotificationManager
)

// InitGlobalNotifications initializes the global notification manager
func InitGlobalNotifications(useNotifications bool, appName string, embeddedIcon []byte) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalNotificationManager = NewNotificationManager(useNotifications, appName, embeddedIcon)
}

// ShowAdminNotification reports application state (reloads, errors, recording).
func ShowAdminNotification(level Level, title, message string) {
	globalMu.RLock()
	n := globalNotificationManager
	globalMu.RUnlock()
	if n == nil {
		log.Printf("Notification not shown (manager not initialized): %s - %s", title, message)
		return
	}
	n.Show(level, title, message)
}

// ShowSnippetNotification confirms that a snippet was copied.
func ShowSnippetNotification(title, message string) {
	ShowAdminNotification(LevelInfo, title, message)
}
