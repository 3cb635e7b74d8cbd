package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Mschirtzinger/boardsync/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	GroupID: "sync",
	Short:   "Show what pull and push would do",
	Long: `Compare the board with GitHub without changing anything.

Tasks are grouped into those a pull would update, those a push would send,
and conflicts where both sides changed since the last sync. A trailing *
marks tasks flagged push_pending.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := signalContext()
		defer cancel()

		cs, err := a.engine.Plan(ctx)
		if err != nil {
			return describe(err)
		}
		ui.WriteChangeSet(os.Stdout, cs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
