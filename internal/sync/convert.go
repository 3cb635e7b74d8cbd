package sync

import (
	"github.com/Mschirtzinger/boardsync/internal/mapper"
	"github.com/Mschirtzinger/boardsync/internal/types"
)

// placeRecord picks the local column for a remote record. existing is the
// linked task's current column, or empty for a new task. A closed record
// always lands in a closed column; moved reports that its status named an
// open column and was overridden.
func (e *Engine) placeRecord(rec *types.RemoteRecord, existing types.ColumnID) (p mapper.Placement, moved bool) {
	if rec.Status != "" {
		p = e.columns.Resolve(rec.Status)
		if rec.IsClosed() && !e.closed[p.Column] && len(e.opts.ClosedColumns) > 0 {
			c := e.closedColumn(existing)
			return mapper.Placement{Column: c, Canonical: p.Canonical}, true
		}
		return p, false
	}

	if rec.IsClosed() && len(e.opts.ClosedColumns) > 0 {
		c := e.closedColumn(existing)
		return mapper.Placement{Column: c, Canonical: c}, false
	}

	if existing != "" && e.columns.Has(existing) && !e.closed[existing] {
		return mapper.Placement{Column: existing, Canonical: existing}, false
	}
	first := e.columns.Columns()[0]
	return mapper.Placement{Column: first, Canonical: first}, false
}

// closedColumn keeps a task already in a closed column there and otherwise
// picks the first closed column.
func (e *Engine) closedColumn(existing types.ColumnID) types.ColumnID {
	if e.closed[existing] {
		return existing
	}
	return e.opts.ClosedColumns[0]
}

// applyRecord overwrites task with the remote record's content and moves
// the checkpoint to the record's updated time. Local-only attributes
// (priority, type, format, extra keys) are kept.
func applyRecord(task *types.Task, rec *types.RemoteRecord, column types.ColumnID) {
	task.Title = rec.Title
	task.Body = rec.Body
	task.Column = column
	task.Tags = mapper.TagsFromLabels(rec.Labels)
	if len(task.Tags) == 0 {
		task.Tags = nil
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = rec.CreatedAt
	}
	task.UpdatedAt = rec.UpdatedAt

	closeOnDelete := false
	if task.Remote != nil {
		closeOnDelete = task.Remote.CloseRemoteOnDelete
	}
	task.Remote = &types.RemoteLink{
		Origin:              rec.Origin,
		Number:              rec.Number,
		NodeID:              rec.NodeID,
		LastSynced:          rec.UpdatedAt,
		CloseRemoteOnDelete: closeOnDelete,
	}
}

// newTask builds a local task for a remote record that has none.
func (e *Engine) newTask(rec *types.RemoteRecord, column types.ColumnID) *types.Task {
	task := &types.Task{
		Priority:  e.opts.DefaultPriority,
		Type:      e.opts.DefaultType,
		CreatedAt: rec.CreatedAt,
		Format:    types.FormatYAML,
	}
	applyRecord(task, rec, column)
	task.Remote.CloseRemoteOnDelete = e.opts.CloseOnDelete
	if task.CreatedAt.IsZero() {
		task.CreatedAt = task.UpdatedAt
	}
	return task
}

// recordFields maps a task onto the remote fields for push. The column must
// map onto a known status unless it is a closed column, which can be
// expressed by the record state alone.
func (e *Engine) recordFields(task *types.Task, vocab *types.Vocabulary) (types.RecordFields, []string, error) {
	fields := types.RecordFields{
		Title:  task.Title,
		Body:   task.Body,
		Closed: e.closed[task.Column],
	}

	if e.opts.PushStatus {
		status, err := mapper.ToRemote(task.Column, vocab.Statuses)
		switch {
		case err == nil:
			fields.Status = status
		case fields.Closed:
		default:
			return types.RecordFields{}, nil, err
		}
	}

	labels, unknown := mapper.LabelsFromTags(task.Tags, vocab.Labels)
	fields.Labels = labels
	return fields, unknown, nil
}
