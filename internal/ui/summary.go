package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/Mschirtzinger/boardsync/internal/types"
)

// WritePull prints the outcome of a pull pass.
func WritePull(w io.Writer, r *types.SyncResult) {
	if r.DryRun {
		fmt.Fprintf(w, "%s Dry run: would create %d, update %d, skip %d\n",
			RenderAccent("○"), r.Created, r.Updated, r.Skipped)
	} else {
		fmt.Fprintf(w, "%s Pulled: %d created, %d updated, %d skipped\n",
			marker(len(r.Errors)), r.Created, r.Updated, r.Skipped)
	}
	writeMessages(w, r.Errors, r.Warnings)
}

// WritePush prints the outcome of a push pass.
func WritePush(w io.Writer, r *types.PushResult) {
	if r.DryRun {
		fmt.Fprintf(w, "%s Dry run: would create %d, update %d, skip %d\n",
			RenderAccent("○"), r.Created, r.Updated, r.Skipped)
	} else {
		fmt.Fprintf(w, "%s Pushed: %d created, %d updated, %d skipped\n",
			marker(len(r.Errors)), r.Created, r.Updated, r.Skipped)
	}
	writeMessages(w, r.Errors, r.Warnings)
}

// WriteRemove prints the outcome of removing task files.
func WriteRemove(w io.Writer, r *types.RemoveResult) {
	if r.DryRun {
		fmt.Fprintf(w, "%s Dry run: would delete %d, close %d remote\n",
			RenderAccent("○"), r.Deleted, r.Closed)
	} else {
		fmt.Fprintf(w, "%s Removed: %d deleted, %d closed remotely\n",
			marker(len(r.Errors)), r.Deleted, r.Closed)
	}
	writeMessages(w, r.Errors, nil)
}

// WriteChangeSet prints what a pull and a push would do.
func WriteChangeSet(w io.Writer, cs *types.ChangeSet) {
	if cs.IsEmpty() {
		fmt.Fprintf(w, "%s Board is in sync (%d linked tasks)\n", RenderPass("✓"), cs.InSync)
		return
	}

	writeSection(w, "To pull", cs.ToPull)
	writeSection(w, "To push", cs.ToPush)
	writeSection(w, "Conflicts", cs.Conflicts)
	fmt.Fprintf(w, "%s\n", RenderMuted(fmt.Sprintf("%d in sync", cs.InSync)))
}

func writeSection(w io.Writer, title string, entries []types.ChangeEntry) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(w, "%s\n", headerStyle.Render(fmt.Sprintf("%s (%d)", title, len(entries))))
	for _, e := range entries {
		fmt.Fprintf(w, "  %s %s", statusLabel(e), e.Ref())
		if e.Local == nil && e.Remote != nil {
			fmt.Fprintf(w, "  %s", RenderMuted(e.Remote.Title))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

func statusLabel(e types.ChangeEntry) string {
	name := e.Status.String()
	if e.Local != nil && e.Local.Remote != nil && e.Local.Remote.PushPending {
		name += "*"
	}
	// Pad before styling so ANSI sequences do not break alignment.
	padded := fmt.Sprintf("%-16s", name)
	switch e.Status {
	case types.StatusConflict:
		return RenderFail(padded)
	case types.StatusRemoteModified, types.StatusLocalModified:
		return RenderWarn(padded)
	case types.StatusLocalOnly:
		return RenderAccent(padded)
	default:
		return padded
	}
}

func marker(failed int) string {
	if failed > 0 {
		return RenderWarn("⚠")
	}
	return RenderPass("✓")
}

func writeMessages(w io.Writer, errs, warnings []string) {
	for _, e := range errs {
		fmt.Fprintf(w, "  %s %s\n", RenderFail("✗"), e)
	}
	for _, msg := range warnings {
		fmt.Fprintf(w, "  %s %s\n", RenderWarn("⚠"), msg)
	}
}

// Plural returns "1 task" or "n tasks".
func Plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	if strings.HasSuffix(noun, "s") {
		return fmt.Sprintf("%d %ses", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
