// Command boardsync keeps a directory of Markdown task files in sync with
// GitHub issues.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "boardsync",
	Short: "Sync a Markdown task board with GitHub issues",
	Long: `boardsync pulls GitHub issues into a directory of Markdown task files and
pushes local tasks back as issues.

Each task file carries YAML (---) or TOML (+++) front matter. Once linked, a
file is named after its issue, e.g. acme-web#42-fix-login.md, and its front
matter records when it was last synced. Columns map onto "status: <name>"
labels on the issue.

Configuration is read from .boardsync.yaml in the current directory, or the
file given with --config. Set BOARDSYNC_GITHUB_TOKEN or GITHUB_TOKEN for
authentication.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupColor()
	},
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
		&cobra.Group{ID: "board", Title: "Board Commands:"},
	)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./.boardsync.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
