package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mschirtzinger/boardsync/internal/conflict"
	"github.com/Mschirtzinger/boardsync/internal/types"
)

// Push sends local tasks to the remote tracker.
//
// With no files, Push plans a pass and sends everything in the change set's
// push list: unlinked tasks, push-pending tasks and tasks edited locally
// since their last sync. Named files are pushed regardless of their status.
//
// Unlinked tasks create a record in the default origin; disposition then
// decides whether the local file is renamed to its synced name, deleted or
// archived. Linked tasks update their record, and the link's checkpoint and
// push-pending flag are reset. A task whose column has no remote status
// fails on its own with types.ErrUnmappableValue.
func (e *Engine) Push(ctx context.Context, files []string, dryRun bool, disposition types.Disposition) (*types.PushResult, error) {
	result := &types.PushResult{DryRun: dryRun}
	if disposition == "" {
		disposition = types.DispositionRename
	}

	tasks, err := e.selectForPush(ctx, files, result)
	if err != nil {
		return result, err
	}

	vocab := make(map[string]*types.Vocabulary)
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		origin := e.opts.DefaultOrigin
		if task.Remote != nil {
			origin = task.Remote.Origin
		}

		v, ok := vocab[origin]
		if !ok {
			v, err = e.remote.Vocabulary(ctx, origin)
			if err != nil {
				if types.IsFatal(err) {
					return result, fmt.Errorf("failed to load vocabulary for %s: %w", origin, err)
				}
				result.AddError(task.Filename, fmt.Errorf("vocabulary for %s: %w", origin, err))
				continue
			}
			vocab[origin] = v
		}

		fields, unknownTags, err := e.recordFields(task, v)
		if err != nil {
			e.logger.Warn("cannot map task for push", "file", task.Filename, "error", err)
			result.AddError(task.Filename, err)
			continue
		}
		if len(unknownTags) > 0 {
			e.logger.Info("pushing tags with no matching remote label", "file", task.Filename, "tags", unknownTags)
		}

		if task.Remote == nil {
			err = e.pushNew(ctx, task, origin, fields, disposition, result)
		} else {
			err = e.pushExisting(ctx, task, fields, result)
		}
		if err != nil {
			return result, err
		}
	}

	if !dryRun {
		if err := e.local.Flush(); err != nil {
			result.AddError("order index", err)
		}
	}

	e.logger.Info("push complete",
		"dry_run", dryRun,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
		"warnings", len(result.Warnings))
	return result, nil
}

func (e *Engine) selectForPush(ctx context.Context, files []string, result *types.PushResult) ([]*types.Task, error) {
	if len(files) > 0 {
		tasks := make([]*types.Task, 0, len(files))
		for _, name := range files {
			task, err := e.local.ReadTask(name)
			if err != nil {
				result.AddError(name, err)
				continue
			}
			tasks = append(tasks, task)
		}
		return tasks, nil
	}

	records, err := e.fetch(ctx)
	if err != nil {
		return nil, err
	}
	local, err := e.loadLocal(func(ref, msg string) {
		result.Skipped++
		result.AddWarning(ref, msg)
	})
	if err != nil {
		return nil, err
	}

	cs := conflict.Detect(local.tasks, local.pullable(records))
	tasks := make([]*types.Task, 0, len(cs.ToPush))
	for _, entry := range cs.ToPush {
		tasks = append(tasks, entry.Local)
	}
	return tasks, nil
}

// pushNew creates a remote record for an unlinked task. Only fatal errors
// are returned; everything else is recorded against the task.
func (e *Engine) pushNew(ctx context.Context, task *types.Task, origin string, fields types.RecordFields, disposition types.Disposition, result *types.PushResult) error {
	if result.DryRun {
		result.Created++
		return nil
	}

	rec, err := e.remote.CreateRecord(ctx, origin, fields)
	if err != nil {
		if types.IsFatal(err) {
			return fmt.Errorf("failed to create record for %s: %w", task.Filename, err)
		}
		e.logger.Warn("failed to create remote record", "file", task.Filename, "error", err)
		result.AddError(task.Filename, err)
		return nil
	}
	result.Created++
	e.logger.Info("created remote record", "file", task.Filename, "record", rec.Key(), "url", rec.URL)

	name := task.Filename
	switch disposition {
	case types.DispositionDelete:
		err = e.local.DeleteFile(name)
	case types.DispositionArchive:
		err = e.local.ArchiveFile(name)
	default:
		linked := task.Clone()
		linked.Remote = &types.RemoteLink{Origin: rec.Origin, Number: rec.Number, CloseRemoteOnDelete: e.opts.CloseOnDelete}
		markSynced(linked, rec)
		err = e.local.WriteTask(linked)
	}
	if err != nil {
		result.AddError(name, fmt.Errorf("created %s but failed to %s local file: %w", rec.Key(), disposition, err))
	}
	return nil
}

// pushExisting updates the remote record of a linked task.
func (e *Engine) pushExisting(ctx context.Context, task *types.Task, fields types.RecordFields, result *types.PushResult) error {
	if result.DryRun {
		result.Updated++
		return nil
	}

	rec, err := e.remote.UpdateRecord(ctx, task.Remote.Key(), fields)
	if err != nil {
		if types.IsFatal(err) {
			return fmt.Errorf("failed to update %s: %w", task.Remote.Key(), err)
		}
		if errors.Is(err, types.ErrRemoteNotFound) {
			e.logger.Warn("remote record no longer exists", "file", task.Filename, "record", task.Remote.Key())
		}
		result.AddError(task.Filename, err)
		return nil
	}
	result.Updated++

	updated := task.Clone()
	markSynced(updated, rec)
	if err := e.local.WriteTask(updated); err != nil {
		result.AddError(task.Filename, fmt.Errorf("updated %s but failed to record the sync locally: %w", rec.Key(), err))
	}
	return nil
}

// markSynced moves a task's checkpoint to the record's updated time and
// clears push-pending, so the next pass classifies the task as synced.
func markSynced(task *types.Task, rec *types.RemoteRecord) {
	task.Remote.NodeID = rec.NodeID
	task.Remote.LastSynced = rec.UpdatedAt
	task.Remote.PushPending = false
	task.UpdatedAt = rec.UpdatedAt
}

// Remove deletes local task files. A linked task marked
// close_remote_on_delete has its remote record closed first; if closing
// fails the file is kept. A record that no longer exists remotely does not
// block the delete.
func (e *Engine) Remove(ctx context.Context, names []string, dryRun bool) (*types.RemoveResult, error) {
	result := &types.RemoveResult{DryRun: dryRun}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		task, err := e.local.ReadTask(name)
		switch {
		case err == nil:
		case errors.Is(err, types.ErrMalformedLocalRecord):
			e.logger.Warn("removing malformed task file without remote close", "file", name, "error", err)
		default:
			result.AddError(name, err)
			continue
		}

		if task != nil && task.Remote != nil && task.Remote.CloseRemoteOnDelete {
			if !dryRun {
				err := e.remote.CloseRecord(ctx, task.Remote.Key())
				switch {
				case err == nil:
				case errors.Is(err, types.ErrRemoteNotFound):
					e.logger.Info("remote record already gone", "file", name, "record", task.Remote.Key())
				case types.IsFatal(err):
					return result, fmt.Errorf("failed to close %s: %w", task.Remote.Key(), err)
				default:
					result.AddError(name, fmt.Errorf("failed to close %s, file kept: %w", task.Remote.Key(), err))
					continue
				}
			}
			result.Closed++
		}

		if !dryRun {
			if err := e.local.DeleteFile(name); err != nil {
				result.AddError(name, err)
				continue
			}
		}
		result.Deleted++
	}

	if !dryRun {
		if err := e.local.Flush(); err != nil {
			result.AddError("order index", err)
		}
	}
	return result, nil
}
