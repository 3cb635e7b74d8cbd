// Package types defines the data model shared by the board sync components.
package types

import (
	"fmt"
	"time"
)

// FrontMatterFormat identifies how a task file's front matter is encoded.
type FrontMatterFormat string

const (
	// FormatYAML is front matter delimited by "---" lines.
	FormatYAML FrontMatterFormat = "yaml"
	// FormatTOML is front matter delimited by "+++" lines.
	FormatTOML FrontMatterFormat = "toml"
)

// Task is one local task record: front matter fields plus a free-text body.
//
// A Task is a snapshot. The sync engine receives tasks from the LocalStore,
// mutates copies in memory and hands them back for writing; it never keeps
// references across passes.
type Task struct {
	// Filename is the base name of the task file inside the board directory.
	// It doubles as the stable local identifier.
	Filename string

	Title    string
	Column   ColumnID
	Priority string
	Type     string
	Tags     []string
	Body     string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Remote is set once the task has been associated with a remote record.
	Remote *RemoteLink

	// Format is the front matter encoding the file was read with.
	Format FrontMatterFormat

	// Extra holds front matter keys owned by other tools. They are written
	// back untouched.
	Extra map[string]any
}

// IsLinked reports whether the task has a remote counterpart.
func (t *Task) IsLinked() bool {
	return t != nil && t.Remote != nil
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	if t.Remote != nil {
		link := *t.Remote
		c.Remote = &link
	}
	if t.Extra != nil {
		c.Extra = make(map[string]any, len(t.Extra))
		for k, v := range t.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// Validate checks the fields every task file must carry.
func (t *Task) Validate() error {
	if t.Filename == "" {
		return fmt.Errorf("filename is required")
	}
	if t.Title == "" {
		return fmt.Errorf("title is required")
	}
	if len(t.Title) > 500 {
		return fmt.Errorf("title must be 500 characters or less (got %d)", len(t.Title))
	}
	if t.Column == "" {
		return fmt.Errorf("column is required")
	}
	if t.UpdatedAt.IsZero() {
		return fmt.Errorf("updated is required")
	}
	if t.Remote != nil {
		if err := t.Remote.Validate(); err != nil {
			return fmt.Errorf("remote: %w", err)
		}
	}
	return nil
}

// RemoteLink is the stored association between a task and a remote record.
type RemoteLink struct {
	// Origin is the remote container, e.g. "owner/repo".
	Origin string
	// Number is the remote record's numeric id within Origin.
	Number int
	// NodeID is the remote's opaque global id, kept for later updates.
	NodeID string
	// LastSynced is when local and remote were last known to agree.
	LastSynced time.Time
	// PushPending asks the next conflict resolution to keep the local copy.
	PushPending bool
	// CloseRemoteOnDelete closes the remote record when the local file is removed.
	CloseRemoteOnDelete bool
}

// Key returns the durable identity of the linked record.
func (l *RemoteLink) Key() RecordKey {
	return RecordKey{Origin: l.Origin, Number: l.Number}
}

// Validate checks that the link identifies a record.
func (l *RemoteLink) Validate() error {
	if l.Origin == "" {
		return fmt.Errorf("origin is required")
	}
	if l.Number <= 0 {
		return fmt.Errorf("number must be positive (got %d)", l.Number)
	}
	return nil
}

// RecordKey is the (origin, number) identity of a remote record.
type RecordKey struct {
	Origin string
	Number int
}

func (k RecordKey) String() string {
	return fmt.Sprintf("%s#%d", k.Origin, k.Number)
}
