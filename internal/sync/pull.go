package sync

import (
	"context"
	"fmt"

	"github.com/Mschirtzinger/boardsync/internal/conflict"
	"github.com/Mschirtzinger/boardsync/internal/mapper"
	"github.com/Mschirtzinger/boardsync/internal/types"
)

// Pull brings remote changes into the board.
//
// Every matching remote record without a local task becomes a new task
// file. Linked tasks are classified and resolved: remote-modified tasks are
// overwritten, conflicts are overwritten (remote wins) unless the link is
// push-pending, and locally modified tasks are kept. force overwrites both
// kept and push-pending tasks. With dryRun nothing is written and the result holds
// the counts a real pass would produce.
//
// Per-record failures are collected in the result. The returned error is
// non-nil only when the pass could not run, for instance on an
// authentication failure.
func (e *Engine) Pull(ctx context.Context, dryRun, force bool) (*types.SyncResult, error) {
	result := &types.SyncResult{DryRun: dryRun}

	if force {
		e.logger.Warn("force pull: local edits and push-pending tasks will be overwritten by remote content")
	}

	records, err := e.fetch(ctx)
	if err != nil {
		return result, err
	}
	local, err := e.loadLocal(result.AddWarning)
	if err != nil {
		return result, err
	}

	byKey := make(map[types.RecordKey]*types.Task, len(local.tasks))
	for _, task := range local.tasks {
		if task.Remote != nil {
			byKey[task.Remote.Key()] = task
		}
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		task, linked := byKey[rec.Key()]
		if !linked {
			if name, blocked := local.unreadable[rec.Key()]; blocked {
				e.logger.Warn("not pulling record over unreadable task file", "record", rec.Key(), "file", name)
				result.AddError(rec.Key().String(), fmt.Errorf("%w: %s must be fixed before this record can be pulled", types.ErrMalformedLocalRecord, name))
				continue
			}
			e.pullNew(rec, result)
			continue
		}

		status := conflict.Classify(task, rec.UpdatedAt)
		switch action := conflict.Resolve(status, task.Remote.PushPending, force); action {
		case conflict.ActionPull:
			if force && status != types.StatusRemoteModified {
				e.logger.Warn("force overwriting local task", "file", task.Filename, "status", status)
			}
			e.pullExisting(task, rec, result)
		case conflict.ActionKeepLocal, conflict.ActionDefer:
			e.logger.Info("skipping task", "file", task.Filename, "status", status, "action", action)
			result.Skipped++
		}
	}

	if !dryRun {
		if err := e.local.Flush(); err != nil {
			result.AddError("order index", err)
		}
	}

	e.logger.Info("pull complete",
		"dry_run", dryRun,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
		"warnings", len(result.Warnings))
	return result, nil
}

func (e *Engine) pullNew(rec *types.RemoteRecord, result *types.SyncResult) {
	placement, moved := e.placeRecord(rec, "")
	e.notePlacement(rec, placement, moved, result)

	if result.DryRun {
		result.Created++
		return
	}

	task := e.newTask(rec, placement.Column)
	if err := e.local.WriteTask(task); err != nil {
		e.logger.Warn("failed to write new task", "record", rec.Key(), "error", err)
		result.AddError(rec.Key().String(), err)
		return
	}
	e.logger.Debug("created task", "file", task.Filename, "record", rec.Key())
	result.Created++
}

func (e *Engine) pullExisting(task *types.Task, rec *types.RemoteRecord, result *types.SyncResult) {
	placement, moved := e.placeRecord(rec, task.Column)
	e.notePlacement(rec, placement, moved, result)

	if result.DryRun {
		result.Updated++
		return
	}

	updated := task.Clone()
	applyRecord(updated, rec, placement.Column)
	if err := e.local.WriteTask(updated); err != nil {
		e.logger.Warn("failed to update task", "file", task.Filename, "error", err)
		result.AddError(task.Filename, err)
		return
	}
	e.logger.Debug("updated task", "file", updated.Filename, "record", rec.Key())
	result.Updated++
}

func (e *Engine) notePlacement(rec *types.RemoteRecord, placement mapper.Placement, moved bool, result *types.SyncResult) {
	if moved {
		e.logger.Warn("closed record with open status placed in closed column",
			"record", rec.Key(), "status", rec.Status, "column", placement.Column)
		result.AddWarning(rec.Key().String(), fmt.Sprintf("record is closed but status %q is open, placed in %s", rec.Status, placement.Column))
		return
	}
	if !placement.Unmapped {
		return
	}
	first := e.columns.Columns()[0]
	e.logger.Warn("unmapped remote status placed in first column",
		"record", rec.Key(), "status", rec.Status, "canonical", placement.Canonical, "column", first)
	result.AddWarning(rec.Key().String(), fmt.Sprintf("status %q matches no column, placed in %s", rec.Status, first))
}
