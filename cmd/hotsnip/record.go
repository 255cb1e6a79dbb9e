package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/TanaroSch/hotkey-snippets/internal/engine"
	"github.com/TanaroSch/hotkey-snippets/internal/hotkey"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Print the hotkey of the next key combination pressed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		src, events, err := hotkey.StartSource(ctx, hotkey.BackendHook, cfg.HookStartTimeout())
		if err != nil {
			return err
		}
		defer src.Stop()

		e := engine.New(engine.Options{})
		defer e.Close()
		go e.Run(ctx, events)

		fmt.Fprintln(os.Stderr, "Press a key combination (Ctrl+C to abort)...")
		chord, err := e.CaptureChord(ctx)
		if err != nil {
			return err
		}
		fmt.Println(chord)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)
}
