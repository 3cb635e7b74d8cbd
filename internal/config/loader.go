package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "BOARDSYNC"

// Load reads the configuration at path, or FileName in the working
// directory when path is empty, applies environment overrides and
// validates the result.
//
// An explicit path must exist. The implicit FileName may be missing, in
// which case defaults and environment variables alone must form a valid
// configuration.
func Load(path string) (*Config, error) {
	v := newViper()

	explicit := path != ""
	if !explicit {
		path = FileName
	}
	if err := loadFile(v, path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		path = ""
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
		cfg.path = abs
	}
	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The conventional token variable is honored after the prefixed one.
	_ = v.BindEnv("github.token", envPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")
	return v
}

func loadFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	return v.ReadInConfig()
}

// setDefaults registers every key so environment overrides reach Unmarshal
// even when the file does not mention the key.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("board.dir", d.Board.Dir)
	v.SetDefault("board.columns", d.Board.Columns)
	v.SetDefault("board.default_priority", d.Board.DefaultPriority)
	v.SetDefault("board.default_type", d.Board.DefaultType)
	v.SetDefault("board.archive_dir", d.Board.ArchiveDir)

	v.SetDefault("sync.repos", d.Sync.Repos)
	v.SetDefault("sync.default_repo", d.Sync.DefaultRepo)
	v.SetDefault("sync.filters", d.Sync.Filters)
	v.SetDefault("sync.closed_columns", d.Sync.ClosedColumns)
	v.SetDefault("sync.push_status", d.Sync.PushStatus)
	v.SetDefault("sync.disposition", d.Sync.Disposition)
	v.SetDefault("sync.close_remote_on_delete", d.Sync.CloseRemoteOnDelete)

	v.SetDefault("github.api_url", d.GitHub.APIURL)
	v.SetDefault("github.token", d.GitHub.Token)
	v.SetDefault("github.timeout", d.GitHub.Timeout)
	v.SetDefault("github.max_retries", d.GitHub.MaxRetries)
	v.SetDefault("github.max_wait", d.GitHub.MaxWait)
	v.SetDefault("github.status_label_prefix", d.GitHub.StatusLabelPrefix)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)

	v.SetDefault("journal.path", d.Journal.Path)
	v.SetDefault("journal.keep", d.Journal.Keep)
}

// resolvePaths makes board.dir absolute relative to the config file (or
// the working directory), and the journal and log paths relative to the
// board.
func (c *Config) resolvePaths() error {
	base := "."
	if c.path != "" {
		base = filepath.Dir(c.path)
	}
	dir := c.Board.Dir
	if dir == "" {
		dir = "."
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(base, dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("failed to resolve board dir: %w", err)
	}
	c.Board.Dir = abs

	if c.Journal.Path != "" && !filepath.IsAbs(c.Journal.Path) {
		c.Journal.Path = filepath.Join(abs, c.Journal.Path)
	}
	if c.Log.File != "" && !filepath.IsAbs(c.Log.File) {
		c.Log.File = filepath.Join(abs, c.Log.File)
	}
	return nil
}
