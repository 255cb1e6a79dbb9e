package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/TanaroSch/hotkey-snippets/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List snippets and their hotkeys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.close()

		snapshot := s.engine.Snapshot()
		if len(snapshot) == 0 {
			fmt.Printf("No snippets in %s\n", s.store.Path())
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tHOTKEY\tTEXT")
		for i, b := range snapshot {
			text := ui.Preview(b.Text)
			if b.Secret != "" {
				text = "[secret: " + b.Secret + "]"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, b.Chord, text)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
