package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Mschirtzinger/boardsync/internal/journal"
	"github.com/Mschirtzinger/boardsync/internal/ui"
)

var pullCmd = &cobra.Command{
	Use:     "pull",
	GroupID: "sync",
	Short:   "Pull GitHub issues into the board",
	Long: `Pull issues matching the configured filters into the board directory.

For every issue:
  - no local file: a new task file is created in the mapped column
  - only the issue changed: the local file is overwritten
  - only the local file changed: the file is kept (push it later)
  - both changed: the issue wins, unless the task is marked push_pending

Use --force to overwrite local edits and push-pending tasks too. Per-issue
failures are listed in the summary and do not stop the pass.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		force, _ := cmd.Flags().GetBool("force")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := signalContext()
		defer cancel()

		pass := journal.Start(journal.KindPull, dryRun)
		res, err := a.engine.Pull(ctx, dryRun, force)
		a.record(pass.FromSync(res).Finish(err))

		ui.WritePull(os.Stdout, res)
		if err != nil {
			return describe(err)
		}
		return nil
	},
}

func init() {
	pullCmd.Flags().Bool("dry-run", false, "show what would change without writing files")
	pullCmd.Flags().Bool("force", false, "let remote content overwrite local edits")
	rootCmd.AddCommand(pullCmd)
}
