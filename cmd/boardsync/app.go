package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mschirtzinger/boardsync/internal/config"
	"github.com/Mschirtzinger/boardsync/internal/journal"
	"github.com/Mschirtzinger/boardsync/internal/logging"
	"github.com/Mschirtzinger/boardsync/internal/remote/github"
	"github.com/Mschirtzinger/boardsync/internal/store"
	"github.com/Mschirtzinger/boardsync/internal/sync"
	"github.com/Mschirtzinger/boardsync/internal/types"
	"github.com/Mschirtzinger/boardsync/internal/ui"
)

// app holds everything a command needs. Build it with newApp and release it
// with close.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	engine  *sync.Engine
	journal *journal.DB
	closers []io.Closer
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger, logCloser, err := logging.New(logging.Options{
		Level:      level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}, os.Stderr)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	codec, err := cfg.Codec()
	if err != nil {
		a.close()
		return nil, err
	}
	columns := cfg.ColumnIDs()
	a.store, err = store.Open(cfg.Board.Dir, store.Options{
		ArchiveDir:    cfg.Board.ArchiveDir,
		DefaultColumn: columns[0],
		Codec:         codec,
		Logger:        logger,
	})
	if err != nil {
		a.close()
		return nil, err
	}

	retry := github.DefaultRetryConfig()
	retry.MaxAttempts = cfg.GitHub.MaxRetries + 1
	if cfg.GitHub.MaxWait > 0 {
		retry.MaxWait = cfg.GitHub.MaxWait
	}
	client, err := github.New(github.Config{
		BaseURL:      cfg.GitHub.APIURL,
		Token:        cfg.GitHub.Token,
		Timeout:      cfg.GitHub.Timeout,
		StatusPrefix: cfg.GitHub.StatusLabelPrefix,
		Retry:        retry,
	}, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	if cfg.GitHub.Token == "" {
		logger.Warn("no GitHub token configured; only public repositories can be read and nothing can be pushed")
	}

	filters, err := cfg.FilterSet()
	if err != nil {
		a.close()
		return nil, err
	}
	a.engine, err = sync.New(client, a.store, sync.Options{
		Origins:         cfg.Sync.Repos,
		DefaultOrigin:   cfg.Sync.DefaultRepo,
		Columns:         columns,
		ClosedColumns:   cfg.ClosedColumnIDs(),
		Filters:         filters,
		PushStatus:      cfg.Sync.PushStatus,
		DefaultPriority: cfg.Board.DefaultPriority,
		DefaultType:     cfg.Board.DefaultType,
		CloseOnDelete:   cfg.Sync.CloseRemoteOnDelete,
	}, logger)
	if err != nil {
		a.close()
		return nil, err
	}

	return a, nil
}

// openJournal opens the history database. The journal is advisory, so a
// failure is logged and the command carries on without it.
func (a *app) openJournal() *journal.DB {
	if a.journal != nil || a.cfg.Journal.Path == "" {
		return a.journal
	}
	db, err := journal.Open(a.cfg.Journal.Path)
	if err != nil {
		a.logger.Warn("journal unavailable", "path", a.cfg.Journal.Path, "error", err)
		return nil
	}
	a.journal = db
	a.closers = append(a.closers, db)
	return db
}

// record appends a finished pass to the journal and prunes old passes.
func (a *app) record(p *journal.Pass) {
	db := a.openJournal()
	if db == nil {
		return
	}
	if err := db.Record(p); err != nil {
		a.logger.Warn("failed to record pass", "pass", p.ShortID(), "error", err)
		return
	}
	if a.cfg.Journal.Keep > 0 {
		if n, err := db.Prune(a.cfg.Journal.Keep); err != nil {
			a.logger.Warn("failed to prune journal", "error", err)
		} else if n > 0 {
			a.logger.Debug("pruned journal", "removed", n)
		}
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	a.closers = nil
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// describe adds a hint to errors the user can act on.
func describe(err error) error {
	switch {
	case errors.Is(err, types.ErrAuthentication):
		return fmt.Errorf("%w\nCheck BOARDSYNC_GITHUB_TOKEN or GITHUB_TOKEN", err)
	case errors.Is(err, types.ErrRateLimited):
		return fmt.Errorf("%w\nTry again once the rate limit resets", err)
	case errors.Is(err, context.Canceled):
		return errors.New("interrupted")
	default:
		return err
	}
}

func setupColor() {
	ui.SetColor(!noColor && os.Getenv("NO_COLOR") == "" && ui.IsTerminal(os.Stdout))
}
