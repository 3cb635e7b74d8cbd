package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/Mschirtzinger/boardsync/internal/journal"
)

// WriteHistory prints recent passes as a table, newest first. Times are
// shown relative to now.
func WriteHistory(w io.Writer, passes []*journal.Pass, now time.Time) {
	if len(passes) == 0 {
		fmt.Fprintln(w, RenderMuted("No sync passes recorded yet"))
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers("ID", "KIND", "WHEN", "CREATED", "UPDATED", "SKIPPED", "DELETED", "RESULT").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, p := range passes {
		kind := string(p.Kind)
		if p.DryRun {
			kind += " (dry)"
		}
		t.Row(
			p.ShortID(),
			kind,
			humanize.RelTime(p.StartedAt, now, "ago", "from now"),
			humanize.Comma(int64(p.Created)),
			humanize.Comma(int64(p.Updated)),
			humanize.Comma(int64(p.Skipped)),
			humanize.Comma(int64(p.Deleted)),
			outcome(p),
		)
	}
	fmt.Fprintln(w, t.Render())
}

// WritePass prints one pass with its messages.
func WritePass(w io.Writer, p *journal.Pass, now time.Time) {
	title := fmt.Sprintf("%s %s", p.Kind, p.ID)
	if p.DryRun {
		title += " (dry run)"
	}
	fmt.Fprintf(w, "%s %s\n\n", RenderAccent("●"), headerStyle.Render(title))
	fmt.Fprintf(w, "Started:  %s (%s)\n", p.StartedAt.Local().Format("2006-01-02 15:04:05"), humanize.RelTime(p.StartedAt, now, "ago", "from now"))
	if !p.FinishedAt.IsZero() {
		fmt.Fprintf(w, "Duration: %s\n", p.FinishedAt.Sub(p.StartedAt).Round(time.Millisecond))
	}
	fmt.Fprintf(w, "Counts:   %d created, %d updated, %d skipped, %d deleted\n",
		p.Created, p.Updated, p.Skipped, p.Deleted)
	fmt.Fprintf(w, "Result:   %s\n", outcome(p))
	if p.Fatal != "" {
		fmt.Fprintf(w, "\n%s %s\n", RenderFail("✗"), p.Fatal)
	}
	if len(p.Errors)+len(p.Warnings) > 0 {
		fmt.Fprintln(w)
		writeMessages(w, p.Errors, p.Warnings)
	}
}

func outcome(p *journal.Pass) string {
	switch {
	case p.Fatal != "":
		return RenderFail("aborted")
	case p.ErrorCount > 0:
		return RenderWarn(Plural(p.ErrorCount, "error"))
	case p.WarningCount > 0:
		return RenderWarn(Plural(p.WarningCount, "warning"))
	default:
		return RenderPass("ok")
	}
}
