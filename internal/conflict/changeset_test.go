package conflict

import (
	"testing"
	"time"

	"github.com/Mschirtzinger/boardsync/internal/types"
)

func record(number int, updated time.Time) *types.RemoteRecord {
	return &types.RemoteRecord{Origin: "acme/web", Number: number, Title: "r", State: "open", UpdatedAt: updated}
}

func refs(entries []types.ChangeEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Ref()
	}
	return out
}

func equalRefs(got []types.ChangeEntry, want ...string) bool {
	r := refs(got)
	if len(r) != len(want) {
		return false
	}
	for i := range r {
		if r[i] != want[i] {
			return false
		}
	}
	return true
}

func TestDetect(t *testing.T) {
	tasks := []*types.Task{
		linkedTask("synced.md", 1, t1, t1, false),
		linkedTask("local.md", 2, t2, t1, false),
		linkedTask("remote.md", 3, t1, t1, false),
		linkedTask("conflict.md", 4, t2, t1, false),
		linkedTask("pending.md", 5, t2, t1, true),
		linkedTask("stale.md", 7, t1, t1, true),
		{Filename: "draft.md", Title: "Draft", Column: "todo", UpdatedAt: t2},
	}
	records := []*types.RemoteRecord{
		record(1, t1),
		record(2, t1),
		record(3, t3),
		record(4, t3),
		record(5, t3),
		record(6, t3),
		record(7, t3),
	}

	cs := Detect(tasks, records)

	if cs.InSync != 1 {
		t.Errorf("InSync = %d, want 1", cs.InSync)
	}
	if !equalRefs(cs.ToPull, "remote.md", "conflict.md", "acme/web#6", "stale.md") {
		t.Errorf("ToPull = %v", refs(cs.ToPull))
	}
	if !equalRefs(cs.ToPush, "local.md", "pending.md", "draft.md") {
		t.Errorf("ToPush = %v", refs(cs.ToPush))
	}
	if !equalRefs(cs.Conflicts, "conflict.md", "pending.md") {
		t.Errorf("Conflicts = %v", refs(cs.Conflicts))
	}
	if cs.IsEmpty() {
		t.Error("IsEmpty() = true")
	}
}

func TestDetectIdempotentAfterSync(t *testing.T) {
	tasks := []*types.Task{linkedTask("a.md", 1, t3, t3, false)}
	records := []*types.RemoteRecord{record(1, t3)}

	cs := Detect(tasks, records)
	if !cs.IsEmpty() || cs.InSync != 1 {
		t.Errorf("Detect() = %+v, want a single in-sync task", cs)
	}
}

func TestDetectUnfetchedLinkedTask(t *testing.T) {
	tasks := []*types.Task{
		linkedTask("edited.md", 1, t2, t1, false),
		linkedTask("quiet.md", 2, t1, t1, false),
	}

	cs := Detect(tasks, nil)
	if !equalRefs(cs.ToPush, "edited.md") {
		t.Errorf("ToPush = %v, want [edited.md]", refs(cs.ToPush))
	}
	if cs.ToPush[0].Remote != nil {
		t.Error("unfetched entry should have no remote side")
	}
	if cs.InSync != 1 {
		t.Errorf("InSync = %d, want 1", cs.InSync)
	}
}

func TestDetectDuplicateIdentity(t *testing.T) {
	tasks := []*types.Task{
		linkedTask("b.md", 1, t1, t1, false),
		linkedTask("a.md", 1, t1, t1, false),
	}

	cs := Detect(tasks, []*types.RemoteRecord{record(1, t3)})
	if !equalRefs(cs.ToPull, "a.md") {
		t.Errorf("ToPull = %v, want only the first file by name", refs(cs.ToPull))
	}
}
