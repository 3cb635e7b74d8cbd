package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/Mschirtzinger/boardsync/internal/types"
)

// ErrInvalidConfig is returned when the configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

var repoPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)

// Validate checks the configuration and reports every problem at once.
// Filter syntax problems also match types.ErrInvalidFilterSyntax.
func (c *Config) Validate() error {
	var problems []error
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	if len(c.Board.Columns) == 0 {
		add("board.columns: at least one column is required")
	}
	columns := make(map[string]bool, len(c.Board.Columns))
	for _, col := range c.Board.Columns {
		if !types.IsCanonical(col) {
			add("board.columns: %q is not a canonical id (lowercase letters, digits and underscores)", col)
		}
		if columns[col] {
			add("board.columns: %q is listed twice", col)
		}
		columns[col] = true
	}
	for _, col := range c.Sync.ClosedColumns {
		if !columns[col] {
			add("sync.closed_columns: %q is not a board column", col)
		}
	}

	if len(c.Sync.Repos) == 0 {
		add("sync.repos: at least one repository is required")
	}
	repos := make(map[string]bool, len(c.Sync.Repos))
	for _, r := range c.Sync.Repos {
		if !repoPattern.MatchString(r) {
			add("sync.repos: %q is not owner/name", r)
		}
		repos[strings.ToLower(r)] = true
	}
	if c.Sync.DefaultRepo != "" && !repos[strings.ToLower(c.Sync.DefaultRepo)] {
		add("sync.default_repo: %q is not in sync.repos", c.Sync.DefaultRepo)
	}
	if _, err := c.Codec(); err != nil {
		add("sync.repos: %w", err)
	}
	if _, err := c.FilterSet(); err != nil {
		add("sync.filters: %w", err)
	}
	if _, err := types.ParseDisposition(c.Sync.Disposition); err != nil {
		add("sync.disposition: %w", err)
	}

	if c.GitHub.APIURL != "" {
		if u, err := url.Parse(c.GitHub.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
			add("github.api_url: %q is not an absolute URL", c.GitHub.APIURL)
		}
	}
	if c.GitHub.Timeout < 0 {
		add("github.timeout: must not be negative")
	}
	if c.GitHub.MaxRetries < 0 {
		add("github.max_retries: must not be negative")
	}
	if c.GitHub.MaxWait < 0 {
		add("github.max_wait: must not be negative")
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		add("log.level: %q is not one of debug, info, warn, error", c.Log.Level)
	}
	if c.Journal.Keep < 0 {
		add("journal.keep: must not be negative")
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(problems...))
}
