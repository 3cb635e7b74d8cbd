package sync

import (
	"context"

	"github.com/Mschirtzinger/boardsync/internal/types"
)

// RemoteGateway is the engine's view of the remote issue tracker.
//
// Implementations carry their own timeouts and retries. Errors must wrap
// the sentinels in the types package so the engine can tell per-record
// failures (types.ErrRemoteNotFound) from fatal ones
// (types.ErrAuthentication, types.ErrRateLimited).
type RemoteGateway interface {
	// CurrentUser returns the login of the authenticated user. It is
	// called only when a filter references "@me".
	CurrentUser(ctx context.Context) (string, error)

	// ListRecords returns one page of records for origin. An empty cursor
	// requests the first page; the returned page's Next is empty on the
	// last page.
	ListRecords(ctx context.Context, origin, cursor string) (*types.RecordPage, error)

	// Vocabulary returns the status values and labels defined for origin.
	Vocabulary(ctx context.Context, origin string) (*types.Vocabulary, error)

	// CreateRecord creates a record in origin and returns it as stored.
	CreateRecord(ctx context.Context, origin string, fields types.RecordFields) (*types.RemoteRecord, error)

	// UpdateRecord overwrites the fields of an existing record and returns
	// it as stored.
	UpdateRecord(ctx context.Context, key types.RecordKey, fields types.RecordFields) (*types.RemoteRecord, error)

	// CloseRecord closes an existing record. Closing a closed record is not
	// an error.
	CloseRecord(ctx context.Context, key types.RecordKey) error
}

// LocalStore is the engine's view of the board directory.
//
// ReadTask returns errors wrapping types.ErrMalformedLocalRecord for files
// that cannot be parsed. WriteTask, DeleteFile and ArchiveFile return
// errors wrapping types.ErrLocalWriteFailure and must never leave a
// partially written file behind.
type LocalStore interface {
	// ListFiles returns the names of all task files.
	ListFiles() ([]string, error)

	// ReadTask reads one task file by name.
	ReadTask(name string) (*types.Task, error)

	// Identify decodes the remote identity from a synced filename without
	// reading the file.
	Identify(name string) (types.RecordKey, bool)

	// WriteTask writes task atomically. For linked tasks the store renames
	// the file to the synced filename when the current name does not
	// encode the link, and updates task.Filename accordingly.
	WriteTask(task *types.Task) error

	// DeleteFile removes a task file. Missing files are not an error.
	DeleteFile(name string) error

	// ArchiveFile moves a task file out of the board.
	ArchiveFile(name string) error

	// Flush persists the ordering index after a pass.
	Flush() error
}
