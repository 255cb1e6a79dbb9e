package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/TanaroSch/hotkey-snippets/internal/app"
	"github.com/TanaroSch/hotkey-snippets/internal/config"
	"github.com/TanaroSch/hotkey-snippets/internal/engine"
	"github.com/TanaroSch/hotkey-snippets/internal/store"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "hotsnip",
	Short:         "Copy text snippets to the clipboard with global hotkeys",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runApp,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the tray application (default)",
	Args:  cobra.NoArgs,
	RunE:  runApp,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath(), "Path to config.json")
	rootCmd.AddCommand(runCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return cfg, nil
}

func runApp(cmd *cobra.Command, args []string) error {
	log.Printf("Hotkey Snippets %s starting...", version)
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app.New(cfg, version).Run()
	return nil
}

// session is an engine over the bindings file for one CLI edit.
type session struct {
	engine  *engine.Engine
	store   *store.Store
	secrets store.SecretStore
	saveErr error
}

// openSession loads the bindings into an engine that saves back to the
// bindings file. Callers must call close so pending saves are written.
func openSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s := &session{secrets: app.OpenSecrets(cfg)}
	s.store = store.New(cfg.BindingsPath(), s.secrets)
	bindings, err := app.LoadBindings(s.store)
	if err != nil {
		return nil, err
	}
	s.engine = engine.New(engine.Options{
		Bindings:       bindings,
		Persister:      s.store,
		OnPersistError: func(err error) { s.saveErr = err },
	})
	return s, nil
}

// close flushes the last save and reports whether it failed.
func (s *session) close() error {
	s.engine.Close()
	return s.saveErr
}
