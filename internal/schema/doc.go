// Package schema defines the on-disk format of task files.
//
// # Task files
//
// Each task is a Markdown file with front matter followed by the body:
//
//	---
//	title: Fix login bug
//	column: in_progress
//	priority: high
//	type: bug
//	tags: [auth]
//	created: 2026-01-10T07:36:29Z
//	updated: 2026-01-12T09:00:00Z
//	remote:
//	    origin: acme/widgets
//	    number: 42
//	    node_id: I_kwDOAbc123
//	    last_synced: 2026-01-12T09:00:00Z
//	    push_pending: false
//	    close_remote_on_delete: false
//	---
//
//	Free-form body text.
//
// TOML front matter delimited by "+++" is read and written as well. Keys this
// package does not know are preserved across rewrites.
//
// # Filenames
//
// Files linked to a remote record are named
// {origin-with-hyphens}#{number}-{title-slug}.md, e.g.
// acme-widgets#42-fix-login-bug.md. Any other name is a local-only task.
// The filename is a display format: the remote block in the front matter is
// the authoritative identity, and the name is recomputed whenever a linked
// task is written.
package schema
