package types

// SyncStatus is the derived synchronization state of one task.
type SyncStatus int

const (
	// StatusLocalOnly means the task has no remote link.
	StatusLocalOnly SyncStatus = iota
	// StatusSynced means neither side changed since the last checkpoint.
	StatusSynced
	// StatusLocalModified means only the local copy changed.
	StatusLocalModified
	// StatusRemoteModified means only the remote copy changed.
	StatusRemoteModified
	// StatusConflict means both copies changed.
	StatusConflict
)

// String returns the user-facing name of the status.
func (s SyncStatus) String() string {
	switch s {
	case StatusLocalOnly:
		return "local-only"
	case StatusSynced:
		return "synced"
	case StatusLocalModified:
		return "local-modified"
	case StatusRemoteModified:
		return "remote-modified"
	case StatusConflict:
		return "conflict"
	default:
		return "unknown"
	}
}
