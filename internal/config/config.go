// Package config loads the board configuration from .boardsync.yaml.
//
// Values come from three layers, later ones winning: built-in defaults,
// the YAML file, and environment variables prefixed BOARDSYNC_ (dots in
// key names become underscores, so BOARDSYNC_GITHUB_TOKEN sets
// github.token). GITHUB_TOKEN is consulted when no token is set otherwise.
//
// Load validates everything that can be checked without I/O, so an invalid
// filter or column list fails before any file or network access.
package config

import (
	"time"

	"github.com/Mschirtzinger/boardsync/internal/filter"
	"github.com/Mschirtzinger/boardsync/internal/schema"
	"github.com/Mschirtzinger/boardsync/internal/types"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".boardsync.yaml"

// Config represents the full boardsync configuration
type Config struct {
	Board   BoardConfig   `yaml:"board" mapstructure:"board"`
	Sync    SyncConfig    `yaml:"sync" mapstructure:"sync"`
	GitHub  GitHubConfig  `yaml:"github" mapstructure:"github"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Journal JournalConfig `yaml:"journal" mapstructure:"journal"`

	// path is the file the configuration was read from, if any.
	path string
}

// BoardConfig describes the local board directory.
type BoardConfig struct {
	Dir             string   `yaml:"dir" mapstructure:"dir"`
	Columns         []string `yaml:"columns" mapstructure:"columns"`
	DefaultPriority string   `yaml:"default_priority" mapstructure:"default_priority"`
	DefaultType     string   `yaml:"default_type" mapstructure:"default_type"`
	ArchiveDir      string   `yaml:"archive_dir" mapstructure:"archive_dir"`
}

// SyncConfig selects what is synced and how.
type SyncConfig struct {
	Repos               []string `yaml:"repos" mapstructure:"repos"`
	DefaultRepo         string   `yaml:"default_repo" mapstructure:"default_repo"`
	Filters             []string `yaml:"filters" mapstructure:"filters"`
	ClosedColumns       []string `yaml:"closed_columns" mapstructure:"closed_columns"`
	PushStatus          bool     `yaml:"push_status" mapstructure:"push_status"`
	Disposition         string   `yaml:"disposition" mapstructure:"disposition"`
	CloseRemoteOnDelete bool     `yaml:"close_remote_on_delete" mapstructure:"close_remote_on_delete"`
}

// GitHubConfig configures the remote gateway.
type GitHubConfig struct {
	APIURL            string        `yaml:"api_url" mapstructure:"api_url"`
	Token             string        `yaml:"token" mapstructure:"token"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxRetries        int           `yaml:"max_retries" mapstructure:"max_retries"`
	MaxWait           time.Duration `yaml:"max_wait" mapstructure:"max_wait"`
	StatusLabelPrefix string        `yaml:"status_label_prefix" mapstructure:"status_label_prefix"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`
	File       string `yaml:"file" mapstructure:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"`
}

// JournalConfig configures the pass history database.
type JournalConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
	Keep int    `yaml:"keep" mapstructure:"keep"`
}

// Path returns the file the configuration was loaded from, or "" when only
// defaults and environment were used.
func (c *Config) Path() string { return c.path }

// ColumnIDs returns the board columns in order.
func (c *Config) ColumnIDs() []types.ColumnID {
	return toColumnIDs(c.Board.Columns)
}

// ClosedColumnIDs returns the columns whose tasks are closed remotely.
func (c *Config) ClosedColumnIDs() []types.ColumnID {
	return toColumnIDs(c.Sync.ClosedColumns)
}

// FilterSet parses the configured filters. An empty list selects every
// record.
func (c *Config) FilterSet() (filter.Set, error) {
	if len(c.Sync.Filters) == 0 {
		return filter.Set{filter.MustParse("*")}, nil
	}
	return filter.ParseAll(c.Sync.Filters)
}

// Codec returns the filename codec for the configured repositories.
func (c *Config) Codec() (*schema.Codec, error) {
	return schema.NewCodec(c.Sync.Repos)
}

// Disposition returns the configured post-create disposition.
func (c *Config) Disposition() types.Disposition {
	d, err := types.ParseDisposition(c.Sync.Disposition)
	if err != nil {
		return types.DispositionRename
	}
	return d
}

func toColumnIDs(values []string) []types.ColumnID {
	ids := make([]types.ColumnID, 0, len(values))
	for _, v := range values {
		ids = append(ids, types.ColumnID(v))
	}
	return ids
}
