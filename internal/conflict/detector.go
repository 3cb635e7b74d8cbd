// Package conflict classifies the synchronization state of a task against
// its remote record and decides how a pass resolves it.
//
// Classification uses three instants: L, the task's updated time; R, the
// remote record's updated time; and S, the link's last_synced checkpoint.
//
//	no link            local-only
//	L <= S, R <= S     synced
//	L >  S, R <= S     local-modified
//	L <= S, R >  S     remote-modified
//	L >  S, R >  S     conflict
package conflict

import (
	"time"

	"github.com/Mschirtzinger/boardsync/internal/types"
)

// Classify returns the sync status of task given the remote record's
// updated time. A zero remoteUpdated is treated as "not changed remotely".
func Classify(task *types.Task, remoteUpdated time.Time) types.SyncStatus {
	if task.Remote == nil {
		return types.StatusLocalOnly
	}
	return classify(task.UpdatedAt, remoteUpdated, task.Remote.LastSynced)
}

func classify(local, remote, synced time.Time) types.SyncStatus {
	localChanged := local.After(synced)
	remoteChanged := remote.After(synced)

	switch {
	case localChanged && remoteChanged:
		return types.StatusConflict
	case localChanged:
		return types.StatusLocalModified
	case remoteChanged:
		return types.StatusRemoteModified
	default:
		return types.StatusSynced
	}
}

// Action is what a pull does with one classified task.
type Action int

const (
	// ActionNone leaves the task alone; there is nothing to pull.
	ActionNone Action = iota
	// ActionPull overwrites the local task with the remote record.
	ActionPull
	// ActionKeepLocal skips the task because it holds unpushed local edits.
	ActionKeepLocal
	// ActionDefer skips the task because it is marked push-pending; the
	// next push sends it.
	ActionDefer
)

func (a Action) String() string {
	switch a {
	case ActionPull:
		return "pull"
	case ActionKeepLocal:
		return "keep-local"
	case ActionDefer:
		return "defer-to-push"
	default:
		return "none"
	}
}

// Resolve applies the conflict policy. A remote modification is always
// pulled. Remote wins a conflict unless the link is push-pending, in which
// case local wins and the task is left for push. force overrides both
// local edits and push-pending.
func Resolve(status types.SyncStatus, pushPending, force bool) Action {
	switch status {
	case types.StatusRemoteModified:
		return ActionPull
	case types.StatusConflict:
		if pushPending && !force {
			return ActionDefer
		}
		return ActionPull
	case types.StatusLocalModified:
		if force {
			return ActionPull
		}
		return ActionKeepLocal
	default:
		return ActionNone
	}
}
