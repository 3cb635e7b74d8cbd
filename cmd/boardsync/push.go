package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mschirtzinger/boardsync/internal/journal"
	"github.com/Mschirtzinger/boardsync/internal/types"
	"github.com/Mschirtzinger/boardsync/internal/ui"
)

var pushCmd = &cobra.Command{
	Use:     "push [file...]",
	GroupID: "sync",
	Short:   "Push local tasks to GitHub",
	Long: `Push local tasks to GitHub as issues.

Without arguments, every task that is not linked yet, is marked
push_pending, or was edited locally since the last sync is pushed. Name
files to push only those.

New issues are created in sync.default_repo. After creation the local file
is renamed to its synced name, or deleted (--delete) or archived
(--archive) instead.

A confirmation prompt is shown unless --yes or --dry-run is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		yes, _ := cmd.Flags().GetBool("yes")
		del, _ := cmd.Flags().GetBool("delete")
		archive, _ := cmd.Flags().GetBool("archive")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		disposition := a.cfg.Disposition()
		switch {
		case del:
			disposition = types.DispositionDelete
		case archive:
			disposition = types.DispositionArchive
		}

		ctx, cancel := signalContext()
		defer cancel()

		if !dryRun && !yes {
			preview, err := a.engine.Push(ctx, args, true, disposition)
			if err != nil {
				return describe(err)
			}
			if preview.Created+preview.Updated == 0 {
				ui.WritePush(os.Stdout, preview)
				fmt.Println("Nothing to push")
				return nil
			}
			ok, err := ui.Confirm(
				fmt.Sprintf("Push %s to GitHub?", ui.Plural(preview.Created+preview.Updated, "task")),
				fmt.Sprintf("%d new, %d updated; new files will be %sd", preview.Created, preview.Updated, disposition))
			if errors.Is(err, ui.ErrNotTerminal) {
				return err
			}
			if err != nil {
				return fmt.Errorf("confirmation failed: %w", err)
			}
			if !ok {
				fmt.Println("Push cancelled")
				return nil
			}
		}

		pass := journal.Start(journal.KindPush, dryRun)
		res, err := a.engine.Push(ctx, args, dryRun, disposition)
		a.record(pass.FromPush(res).Finish(err))

		ui.WritePush(os.Stdout, res)
		if err != nil {
			return describe(err)
		}
		return nil
	},
}

func init() {
	pushCmd.Flags().Bool("dry-run", false, "show what would be pushed without calling GitHub writes")
	pushCmd.Flags().BoolP("yes", "y", false, "push without asking for confirmation")
	pushCmd.Flags().Bool("delete", false, "delete local files once their issue is created")
	pushCmd.Flags().Bool("archive", false, "archive local files once their issue is created")
	pushCmd.MarkFlagsMutuallyExclusive("delete", "archive")
	rootCmd.AddCommand(pushCmd)
}
