package ui

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// OpenInDefaultApp resolves path and opens it with the OS default handler.
func OpenInDefaultApp(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		log.Printf("Warning: Failed to get absolute path for '%s': %v. Proceeding with original path.", path, err)
		absPath = path
	}
	if _, err := os.Stat(absPath); err != nil {
		return fmt.Errorf("cannot open '%s': %w", absPath, err)
	}
	return openFileInDefaultApp(absPath)
}
