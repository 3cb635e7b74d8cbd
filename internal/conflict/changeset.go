package conflict

import (
	"sort"
	"time"

	"github.com/Mschirtzinger/boardsync/internal/types"
)

// Detect builds the ChangeSet for one pass from the local tasks and the
// remote records that matched the configured filters.
//
// Remote records with no local task go to ToPull. Linked tasks are
// classified against their record; conflicts are listed in Conflicts and
// also in ToPush or ToPull according to the push-pending flag. Remote
// modifications go to ToPull even when push-pending, since there are no
// local edits to protect. Unlinked tasks, locally modified tasks and
// push-pending tasks that are otherwise in sync go to ToPush. A
// linked task whose record was not fetched is classified against a zero
// remote time. When two tasks carry the same identity only the first, by
// filename, is considered.
func Detect(tasks []*types.Task, records []*types.RemoteRecord) *types.ChangeSet {
	cs := &types.ChangeSet{}
	tasks = sortedTasks(tasks)

	byKey := make(map[types.RecordKey]*types.Task, len(tasks))
	for _, task := range tasks {
		if task.Remote == nil {
			continue
		}
		if _, dup := byKey[task.Remote.Key()]; !dup {
			byKey[task.Remote.Key()] = task
		}
	}

	seen := make(map[types.RecordKey]bool, len(records))
	for _, rec := range sortedRecords(records) {
		key := rec.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		task, ok := byKey[key]
		if !ok {
			cs.ToPull = append(cs.ToPull, types.ChangeEntry{Remote: rec, Status: types.StatusRemoteModified})
			continue
		}
		place(cs, types.ChangeEntry{Local: task, Remote: rec, Status: Classify(task, rec.UpdatedAt)})
	}

	for _, task := range tasks {
		switch {
		case task.Remote == nil:
			cs.ToPush = append(cs.ToPush, types.ChangeEntry{Local: task, Status: types.StatusLocalOnly})
		case !seen[task.Remote.Key()] && byKey[task.Remote.Key()] == task:
			place(cs, types.ChangeEntry{Local: task, Status: Classify(task, time.Time{})})
		}
	}
	return cs
}

func place(cs *types.ChangeSet, entry types.ChangeEntry) {
	pending := entry.Local.Remote.PushPending

	switch entry.Status {
	case types.StatusSynced:
		if pending {
			cs.ToPush = append(cs.ToPush, entry)
			return
		}
		cs.InSync++
	case types.StatusLocalModified:
		cs.ToPush = append(cs.ToPush, entry)
	case types.StatusRemoteModified:
		cs.ToPull = append(cs.ToPull, entry)
	case types.StatusConflict:
		cs.Conflicts = append(cs.Conflicts, entry)
		if pending {
			cs.ToPush = append(cs.ToPush, entry)
			return
		}
		cs.ToPull = append(cs.ToPull, entry)
	}
}

func sortedTasks(tasks []*types.Task) []*types.Task {
	out := make([]*types.Task, 0, len(tasks))
	for _, t := range tasks {
		if t != nil {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out
}

func sortedRecords(records []*types.RemoteRecord) []*types.RemoteRecord {
	out := make([]*types.RemoteRecord, 0, len(records))
	for _, r := range records {
		if r != nil {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Origin != out[j].Origin {
			return out[i].Origin < out[j].Origin
		}
		return out[i].Number < out[j].Number
	})
	return out
}
