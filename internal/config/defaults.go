package config

import (
	"fmt"
	"os"
	"time"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Board: BoardConfig{
			Dir:             ".",
			Columns:         []string{"backlog", "todo", "in_progress", "review", "done"},
			DefaultPriority: "medium",
			DefaultType:     "task",
			ArchiveDir:      "archive",
		},
		Sync: SyncConfig{
			ClosedColumns: []string{"done"},
			PushStatus:    true,
			Disposition:   "rename",
		},
		GitHub: GitHubConfig{
			APIURL:            "https://api.github.com",
			Timeout:           30 * time.Second,
			MaxRetries:        3,
			MaxWait:           time.Minute,
			StatusLabelPrefix: "status: ",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Journal: JournalConfig{
			Path: ".boardsync/journal.db",
			Keep: 200,
		},
	}
}

const sampleConfig = `# boardsync configuration
board:
  dir: .
  # Ordered column ids; each must be lowercase with underscores.
  columns: [backlog, todo, in_progress, review, done]
  default_priority: medium
  default_type: task
  archive_dir: archive

sync:
  # Repositories as owner/name. New records go to default_repo.
  repos: [%s]
  # Filters are OR'ed; terms within one filter are AND'ed.
  # filters:
  #   - "is:open assignee:@me"
  #   - "label:urgent"
  closed_columns: [done]
  push_status: true
  disposition: rename  # rename, delete or archive
  close_remote_on_delete: false

github:
  # token: set BOARDSYNC_GITHUB_TOKEN or GITHUB_TOKEN instead
  timeout: 30s
  max_retries: 3
  max_wait: 1m
  status_label_prefix: "status: "

log:
  level: info
  # file: .boardsync/boardsync.log

journal:
  path: .boardsync/journal.db
  keep: 200
`

// WriteDefault writes a commented starter configuration for repo to path.
// It refuses to overwrite an existing file.
func WriteDefault(path, repo string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if _, err := fmt.Fprintf(f, sampleConfig, repo); err != nil {
		f.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	return f.Close()
}
