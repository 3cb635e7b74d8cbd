package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mschirtzinger/boardsync/internal/journal"
	"github.com/Mschirtzinger/boardsync/internal/ui"
)

var rmCmd = &cobra.Command{
	Use:     "rm <file>...",
	GroupID: "board",
	Short:   "Remove task files, closing their issues if configured",
	Long: `Remove task files from the board.

A linked task whose front matter sets close_remote_on_delete has its issue
closed first; if closing fails the file is kept. An issue that no longer
exists does not block the removal.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if !dryRun && !yes {
			ok, err := ui.Confirm(fmt.Sprintf("Remove %s?", ui.Plural(len(args), "file")), "")
			if errors.Is(err, ui.ErrNotTerminal) {
				return err
			}
			if err != nil {
				return fmt.Errorf("confirmation failed: %w", err)
			}
			if !ok {
				fmt.Println("Nothing removed")
				return nil
			}
		}

		ctx, cancel := signalContext()
		defer cancel()

		pass := journal.Start(journal.KindRemove, dryRun)
		res, err := a.engine.Remove(ctx, args, dryRun)
		a.record(pass.FromRemove(res).Finish(err))

		ui.WriteRemove(os.Stdout, res)
		if err != nil {
			return describe(err)
		}
		return nil
	},
}

func init() {
	rmCmd.Flags().Bool("dry-run", false, "show what would be removed")
	rmCmd.Flags().BoolP("yes", "y", false, "remove without asking for confirmation")
	rootCmd.AddCommand(rmCmd)
}
