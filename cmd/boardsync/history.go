package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mschirtzinger/boardsync/internal/config"
	"github.com/Mschirtzinger/boardsync/internal/journal"
	"github.com/Mschirtzinger/boardsync/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:     "history [pass-id]",
	GroupID: "sync",
	Short:   "Show recent sync passes",
	Long: `List recent pull, push and rm passes recorded in the journal, newest
first. Give a pass id (or a unique prefix) to see its errors and warnings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if _, err := os.Stat(cfg.Journal.Path); os.IsNotExist(err) {
			fmt.Printf("%s No journal at %s yet\n", ui.RenderWarn("⚠"), cfg.Journal.Path)
			return nil
		}

		db, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		now := time.Now()
		if len(args) == 1 {
			p, err := db.GetPass(args[0])
			if err != nil {
				return err
			}
			ui.WritePass(os.Stdout, p, now)
			return nil
		}

		passes, err := db.ListPasses(limit)
		if err != nil {
			return err
		}
		ui.WriteHistory(os.Stdout, passes, now)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "number of passes to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}
