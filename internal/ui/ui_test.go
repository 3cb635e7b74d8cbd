package ui

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Mschirtzinger/boardsync/internal/journal"
	"github.com/Mschirtzinger/boardsync/internal/types"
)

func TestMain(m *testing.M) {
	SetColor(false)
	os.Exit(m.Run())
}

func TestRenderWithoutColor(t *testing.T) {
	for _, render := range []func(string) string{RenderPass, RenderWarn, RenderFail, RenderAccent, RenderMuted} {
		if got := render("✓"); got != "✓" {
			t.Errorf("render without colour = %q, want plain text", got)
		}
	}
}

func TestWritePull(t *testing.T) {
	var buf bytes.Buffer
	r := &types.SyncResult{Created: 1, Updated: 2, Skipped: 3}
	r.AddError("acme/web#4", types.ErrLocalWriteFailure)
	r.AddWarning("broken.md", "malformed local record")
	WritePull(&buf, r)

	out := buf.String()
	for _, want := range []string{"Pulled: 1 created, 2 updated, 3 skipped", "✗ acme/web#4: local write failed", "⚠ broken.md: malformed local record"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWritePushDryRun(t *testing.T) {
	var buf bytes.Buffer
	WritePush(&buf, &types.PushResult{DryRun: true, Created: 2})
	if !strings.Contains(buf.String(), "Dry run: would create 2, update 0, skip 0") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestWritePushWarnings(t *testing.T) {
	var buf bytes.Buffer
	r := &types.PushResult{Skipped: 1}
	r.AddWarning("broken.md", "malformed front matter")
	WritePush(&buf, r)
	if !strings.Contains(buf.String(), "broken.md: malformed front matter") {
		t.Errorf("warning missing from output: %s", buf.String())
	}
}

func TestWriteRemove(t *testing.T) {
	var buf bytes.Buffer
	WriteRemove(&buf, &types.RemoveResult{Deleted: 2, Closed: 1})
	if !strings.Contains(buf.String(), "Removed: 2 deleted, 1 closed remotely") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestWriteChangeSet(t *testing.T) {
	var buf bytes.Buffer
	WriteChangeSet(&buf, &types.ChangeSet{InSync: 5})
	if !strings.Contains(buf.String(), "Board is in sync (5 linked tasks)") {
		t.Errorf("unexpected output: %s", buf.String())
	}

	buf.Reset()
	pending := &types.Task{
		Filename: "acme-web#3-fix-login.md",
		Remote:   &types.RemoteLink{Origin: "acme/web", Number: 3, PushPending: true},
	}
	cs := &types.ChangeSet{
		ToPull: []types.ChangeEntry{
			{Remote: &types.RemoteRecord{Origin: "acme/web", Number: 9, Title: "New bug"}, Status: types.StatusRemoteModified},
		},
		ToPush: []types.ChangeEntry{
			{Local: &types.Task{Filename: "draft.md"}, Status: types.StatusLocalOnly},
			{Local: pending, Status: types.StatusConflict},
		},
		Conflicts: []types.ChangeEntry{{Local: pending, Status: types.StatusConflict}},
		InSync:    1,
	}
	WriteChangeSet(&buf, cs)

	out := buf.String()
	for _, want := range []string{"To pull (1)", "acme/web#9", "New bug", "To push (2)", "draft.md", "conflict*", "Conflicts (1)", "1 in sync"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteHistory(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	WriteHistory(&buf, nil, now)
	if !strings.Contains(buf.String(), "No sync passes") {
		t.Errorf("unexpected output: %s", buf.String())
	}

	buf.Reset()
	passes := []*journal.Pass{
		{ID: "0123456789abcdef", Kind: journal.KindPull, StartedAt: now.Add(-2 * time.Hour), Created: 1200, ErrorCount: 1},
		{ID: "fedcba9876543210", Kind: journal.KindPush, DryRun: true, StartedAt: now.Add(-3 * 24 * time.Hour), Fatal: "authentication failed"},
	}
	WriteHistory(&buf, passes, now)

	out := buf.String()
	for _, want := range []string{"01234567", "pull", "2 hours ago", "1,200", "1 error", "push (dry)", "3 days ago", "aborted"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWritePass(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	p := &journal.Pass{
		ID:         "0123456789abcdef",
		Kind:       journal.KindRemove,
		StartedAt:  now.Add(-time.Minute),
		FinishedAt: now.Add(-time.Minute + 1500*time.Millisecond),
		Deleted:    2,
		Errors:     []string{"old.md: remote record not found"},
		ErrorCount: 1,
	}

	var buf bytes.Buffer
	WritePass(&buf, p, now)

	out := buf.String()
	for _, want := range []string{"remove 0123456789abcdef", "1 minute ago", "Duration: 1.5s", "2 deleted", "✗ old.md: remote record not found"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPlural(t *testing.T) {
	tests := []struct {
		n    int
		noun string
		want string
	}{
		{1, "error", "1 error"},
		{2, "error", "2 errors"},
		{0, "warning", "0 warnings"},
		{3, "pass", "3 passes"},
	}
	for _, tt := range tests {
		if got := Plural(tt.n, tt.noun); got != tt.want {
			t.Errorf("Plural(%d, %q) = %q, want %q", tt.n, tt.noun, got, tt.want)
		}
	}
}
