package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/99designs/keyring"
	"github.com/tidwall/gjson"
)

// Config holds the application configuration
type Config struct {
	UseNotifications bool `json:"use_notifications"`
	// BindingsFile is the snippet list. Relative paths resolve against the
	// directory holding config.json.
	BindingsFile       string `json:"bindings_file"`
	CaptureBackend     string `json:"capture_backend"` // auto, hook, grab or none
	HookStartTimeoutMS int    `json:"hook_start_timeout_ms"`
	AutoPaste          bool   `json:"auto_paste"`
	RestoreClipboard   bool   `json:"restore_clipboard"`
	WatchBindingsFile  bool   `json:"watch_bindings_file"`
	KeyringService     string `json:"keyring_service"`

	// Non-JSON fields (runtime state)
	configPath string
}

const (
	DefaultKeyringService   = "HotkeySnippets"
	DefaultBindingsFile     = "settings.json"
	DefaultCaptureBackend   = "auto"
	DefaultHookStartTimeout = 2000
	DefaultConfigFile       = "config.json"
)

// Default returns the configuration written on first start.
func Default() *Config {
	return &Config{
		UseNotifications:   true,
		BindingsFile:       DefaultBindingsFile,
		CaptureBackend:     DefaultCaptureBackend,
		HookStartTimeoutMS: DefaultHookStartTimeout,
		AutoPaste:          false,
		RestoreClipboard:   false,
		WatchBindingsFile:  true,
		KeyringService:     DefaultKeyringService,
	}
}

// DefaultConfigPath returns config.json next to the executable, or in the
// working directory if the executable path is unknown.
func DefaultConfigPath() string {
	exe, err := os.Executable()
	if err != nil {
		log.Printf("Warning: Could not determine executable path: %v. Using working directory.", err)
		return DefaultConfigFile
	}
	return filepath.Join(filepath.Dir(exe), DefaultConfigFile)
}

// GetConfigPath returns the path to the configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// BindingsPath returns the absolute-or-config-relative path of the bindings file.
func (c *Config) BindingsPath() string {
	name := c.BindingsFile
	if name == "" {
		name = DefaultBindingsFile
	}
	if filepath.IsAbs(name) || c.configPath == "" {
		return name
	}
	return filepath.Join(filepath.Dir(c.configPath), name)
}

// HookStartTimeout returns how long the global hook may take to come up.
func (c *Config) HookStartTimeout() time.Duration {
	if c.HookStartTimeoutMS <= 0 {
		return DefaultHookStartTimeout * time.Millisecond
	}
	return time.Duration(c.HookStartTimeoutMS) * time.Millisecond
}

// applyDefaults fills fields an older or hand-edited file left empty.
func (c *Config) applyDefaults() {
	if c.BindingsFile == "" {
		c.BindingsFile = DefaultBindingsFile
	}
	if c.CaptureBackend == "" {
		c.CaptureBackend = DefaultCaptureBackend
	}
	if c.HookStartTimeoutMS <= 0 {
		c.HookStartTimeoutMS = DefaultHookStartTimeout
	}
	if c.KeyringService == "" {
		c.KeyringService = DefaultKeyringService
	}
}

// Load reads and parses the configuration file, creating a default one if it
// does not exist.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		// If file not found, try creating default first, then re-read or return error if creation fails
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("Config file '%s' not found. Attempting to create default.", configPath)
			if createErr := CreateDefaultConfig(configPath); createErr != nil {
				return nil, fmt.Errorf("config file not found and failed to create default '%s': %w", configPath, createErr)
			}
			data, err = os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file '%s' even after creating default: %w", configPath, err)
			}
		} else {
			return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
		}
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", configPath, err)
	}
	config.applyDefaults()

	// Store config path for future saves
	config.configPath = configPath

	// Files written by an older version get the new settings added, so
	// they can be found and edited.
	if missing := missingKeys(data); len(missing) > 0 {
		log.Printf("Config file '%s' lacks %s; adding default values.", configPath, strings.Join(missing, ", "))
		if err := config.Save(); err != nil {
			log.Printf("Warning: could not update config file '%s': %v", configPath, err)
		}
	}
	return config, nil
}

// missingKeys lists the JSON keys of Config that data does not set.
func missingKeys(data []byte) []string {
	var missing []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		if !gjson.GetBytes(data, name).Exists() {
			missing = append(missing, name)
		}
	}
	return missing
}

// Save writes the current configuration back to the config.json file
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config has no file path")
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	// 0600: the file may name keyring entries.
	return os.WriteFile(c.configPath, data, 0600)
}

// CreateDefaultConfig creates a default configuration file if none exists
func CreateDefaultConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return nil // File exists, don't overwrite
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error checking config path '%s': %w", configPath, err)
	}

	log.Printf("Creating default configuration file at: %s", configPath)

	data, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal default config to JSON: %w", err)
	}

	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory '%s': %w", dir, err)
		}
	}
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write default config file '%s': %w", configPath, err)
	}

	log.Printf("Default configuration file created successfully.")
	return nil
}

// OpenKeyring opens the OS keyring used for secret snippets.
func (c *Config) OpenKeyring() (keyring.Keyring, error) {
	service := c.KeyringService
	if service == "" {
		service = DefaultKeyringService
	}
	kr, err := keyring.Open(keyring.Config{
		ServiceName: service,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
		},
		LibSecretCollectionName:  "login",
		PassPrefix:               service,
		WinCredPrefix:            service,
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring for service '%s': %w", service, err)
	}
	return kr, nil
}
