// Package sync reconciles a local board of task files with a remote issue
// tracker.
//
// Overview
//
// The Engine runs one pass at a time. A pass reads every task file through
// a LocalStore, lists the remote records of every configured origin through
// a RemoteGateway, keeps the records that match the configured filters and
// then classifies each pair:
//
//	LocalStore (board dir)          RemoteGateway (tracker)
//	     ├── *.md → []*types.Task        └── ListRecords → []*types.RemoteRecord
//	                    ↘                  ↙
//	                  filter.Set  (OR across expressions)
//	                          ↓
//	                  conflict.Detect → types.ChangeSet
//	                          ↓
//	           Pull: write local   /   Push: write remote
//
// Usage
//
//	engine, err := sync.New(gateway, board, sync.Options{
//	    Origins: []string{"acme/web"},
//	    Columns: []types.ColumnID{"backlog", "doing", "done"},
//	    Filters: filter.Set{filter.MustParse("assignee:@me")},
//	}, logger)
//	if err != nil {
//	    return err
//	}
//
//	result, err := engine.Pull(ctx, false, false)
//
// Error Handling
//
// A pass is resilient to individual record failures:
//
//   - Malformed task files are skipped with a warning
//   - Per-record remote and write failures are collected in the result
//   - Authentication failures, exhausted rate limits and unreadable board
//     directories abort the pass and are returned as errors
//
// Pull, Push and Remove always return a non-nil result, even together with
// an error, so callers can report partial progress.
//
// Concurrency
//
// Remote listing fans out per origin. Local writes are serialized. The
// board directory is assumed to have a single writer; running two passes
// against the same directory at once is not supported.
package sync
