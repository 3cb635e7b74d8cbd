package types

import "fmt"

// ChangeEntry pairs a local task with its remote counterpart and their status.
// Either side may be nil: Local is nil for remote records with no local file,
// Remote is nil for local-only tasks.
type ChangeEntry struct {
	Local  *Task
	Remote *RemoteRecord
	Status SyncStatus
}

// Ref returns a short human-readable reference for the entry.
func (e ChangeEntry) Ref() string {
	switch {
	case e.Local != nil:
		return e.Local.Filename
	case e.Remote != nil:
		return e.Remote.Key().String()
	default:
		return "<empty>"
	}
}

// ChangeSet is the result of one detection pass over the local and remote sets.
type ChangeSet struct {
	ToPull    []ChangeEntry
	ToPush    []ChangeEntry
	Conflicts []ChangeEntry
	// InSync counts linked tasks that need nothing.
	InSync int
}

// IsEmpty reports whether the change set has no pending work.
func (c *ChangeSet) IsEmpty() bool {
	return len(c.ToPull) == 0 && len(c.ToPush) == 0 && len(c.Conflicts) == 0
}

// SyncResult is the outcome of one pull pass. It is always returned, even
// when individual records fail.
type SyncResult struct {
	DryRun   bool
	Created  int
	Updated  int
	Skipped  int
	Errors   []string
	Warnings []string
}

// AddError records a per-record failure.
func (r *SyncResult) AddError(ref string, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", ref, err))
}

// AddWarning records a non-fatal problem.
func (r *SyncResult) AddWarning(ref string, msg string) {
	r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %s", ref, msg))
}

// Pulled returns the number of records written locally (or that would be, on dry run).
func (r *SyncResult) Pulled() int {
	return r.Created + r.Updated
}

// Disposition selects what happens to a local file after its remote record is created.
type Disposition string

const (
	// DispositionRename renames the file to the encoded synced filename.
	DispositionRename Disposition = "rename"
	// DispositionDelete deletes the local file.
	DispositionDelete Disposition = "delete"
	// DispositionArchive moves the local file to the archive directory.
	DispositionArchive Disposition = "archive"
)

// ParseDisposition validates a disposition name.
func ParseDisposition(s string) (Disposition, error) {
	switch d := Disposition(s); d {
	case DispositionRename, DispositionDelete, DispositionArchive:
		return d, nil
	case "":
		return DispositionRename, nil
	default:
		return "", fmt.Errorf("invalid disposition %q (want rename, delete or archive)", s)
	}
}

// PushResult is the outcome of one push pass.
type PushResult struct {
	DryRun   bool
	Created  int
	Updated  int
	Skipped  int
	Errors   []string
	Warnings []string
}

// AddError records a per-record failure.
func (r *PushResult) AddError(ref string, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", ref, err))
}

// AddWarning records a non-fatal problem, such as a task file that was
// skipped.
func (r *PushResult) AddWarning(ref string, msg string) {
	r.Warnings = append(r.Warnings, fmt.Sprintf("%s: %s", ref, msg))
}

// RemoveResult is the outcome of removing local task files.
type RemoveResult struct {
	DryRun  bool
	Deleted int
	Closed  int
	Errors  []string
}

// AddError records a per-file failure.
func (r *RemoveResult) AddError(ref string, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", ref, err))
}
