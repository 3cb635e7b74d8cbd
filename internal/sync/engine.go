package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Mschirtzinger/boardsync/internal/conflict"
	"github.com/Mschirtzinger/boardsync/internal/filter"
	"github.com/Mschirtzinger/boardsync/internal/logging"
	"github.com/Mschirtzinger/boardsync/internal/mapper"
	"github.com/Mschirtzinger/boardsync/internal/types"
)

// maxParallelOrigins bounds concurrent remote listing.
const maxParallelOrigins = 4

// Options configures an Engine.
type Options struct {
	// Origins are the remote containers to list, e.g. "owner/repo".
	Origins []string
	// DefaultOrigin receives newly created records. Defaults to the first
	// origin.
	DefaultOrigin string
	// Columns is the ordered column vocabulary of the board.
	Columns []types.ColumnID
	// ClosedColumns hold tasks whose remote record is closed.
	ClosedColumns []types.ColumnID
	// Filters select the remote records that take part in sync. An empty
	// set selects every record.
	Filters filter.Set
	// PushStatus maps the task column onto a remote status on push.
	PushStatus bool
	// DefaultPriority and DefaultType are applied to tasks created by pull.
	DefaultPriority string
	DefaultType     string
	// CloseOnDelete is stored on every new link and makes Remove close the
	// remote record. Existing links keep their own setting.
	CloseOnDelete bool
}

// Engine runs pull and push passes between a LocalStore and a RemoteGateway.
type Engine struct {
	remote  RemoteGateway
	local   LocalStore
	opts    Options
	columns *mapper.Mapper
	closed  map[types.ColumnID]bool
	logger  *slog.Logger
}

// New creates an Engine.
//
// If logger is nil, slog.Default() is used.
func New(remote RemoteGateway, local LocalStore, opts Options, logger *slog.Logger) (*Engine, error) {
	if remote == nil || local == nil {
		return nil, errors.New("sync: remote gateway and local store are required")
	}
	if len(opts.Origins) == 0 {
		return nil, errors.New("sync: at least one origin is required")
	}
	if len(opts.Columns) == 0 {
		return nil, errors.New("sync: at least one column is required")
	}
	if opts.DefaultOrigin == "" {
		opts.DefaultOrigin = opts.Origins[0]
	}
	if len(opts.Filters) == 0 {
		opts.Filters = filter.Set{filter.MustParse("*")}
	}

	m := mapper.New(opts.Columns)
	closed := make(map[types.ColumnID]bool, len(opts.ClosedColumns))
	for _, c := range opts.ClosedColumns {
		if !m.Has(c) {
			return nil, fmt.Errorf("sync: closed column %q is not a board column", c)
		}
		closed[c] = true
	}

	return &Engine{
		remote:  remote,
		local:   local,
		opts:    opts,
		columns: m,
		closed:  closed,
		logger:  logging.Component(logger, "sync"),
	}, nil
}

// Plan computes the ChangeSet for the current local and remote state
// without writing anything.
func (e *Engine) Plan(ctx context.Context) (*types.ChangeSet, error) {
	records, err := e.fetch(ctx)
	if err != nil {
		return nil, err
	}
	local, err := e.loadLocal(func(ref, msg string) {})
	if err != nil {
		return nil, err
	}
	return conflict.Detect(local.tasks, local.pullable(records)), nil
}

// fetch lists every origin and returns the records that match the filters,
// sorted by origin and number.
func (e *Engine) fetch(ctx context.Context) ([]*types.RemoteRecord, error) {
	var user string
	if e.opts.Filters.NeedsUser() {
		u, err := e.remote.CurrentUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve current user: %w", err)
		}
		user = u
	}

	perOrigin := make([][]*types.RemoteRecord, len(e.opts.Origins))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelOrigins)
	for i, origin := range e.opts.Origins {
		i, origin := i, origin
		g.Go(func() error {
			recs, err := e.listOrigin(gctx, origin)
			if err != nil {
				return err
			}
			perOrigin[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var matched []*types.RemoteRecord
	total := 0
	for _, recs := range perOrigin {
		total += len(recs)
		for _, rec := range recs {
			if e.opts.Filters.Match(rec, user) {
				matched = append(matched, rec)
			}
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Origin != matched[j].Origin {
			return matched[i].Origin < matched[j].Origin
		}
		return matched[i].Number < matched[j].Number
	})

	e.logger.Debug("fetched remote records", "origins", len(e.opts.Origins), "total", total, "matched", len(matched))
	return matched, nil
}

func (e *Engine) listOrigin(ctx context.Context, origin string) ([]*types.RemoteRecord, error) {
	var out []*types.RemoteRecord
	cursor := ""
	for {
		page, err := e.remote.ListRecords(ctx, origin, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", origin, err)
		}
		out = append(out, page.Records...)
		if page.Next == "" || page.Next == cursor {
			return out, nil
		}
		cursor = page.Next
	}
}

// localSet is the readable side of the board.
type localSet struct {
	tasks []*types.Task
	// unreadable maps identities encoded in the names of skipped files to
	// those files. Their records must not be written locally.
	unreadable map[types.RecordKey]string
}

// pullable drops records whose local file exists but could not be read.
func (l *localSet) pullable(records []*types.RemoteRecord) []*types.RemoteRecord {
	if len(l.unreadable) == 0 {
		return records
	}
	kept := make([]*types.RemoteRecord, 0, len(records))
	for _, rec := range records {
		if _, blocked := l.unreadable[rec.Key()]; !blocked {
			kept = append(kept, rec)
		}
	}
	return kept
}

// loadLocal reads every task file. Files that cannot be read are reported
// through warn and skipped, as are files whose identity repeats an earlier
// file's.
func (e *Engine) loadLocal(warn func(ref, msg string)) (*localSet, error) {
	names, err := e.local.ListFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to list local tasks: %w", err)
	}

	set := &localSet{
		tasks:      make([]*types.Task, 0, len(names)),
		unreadable: make(map[types.RecordKey]string),
	}
	owners := make(map[types.RecordKey]string)
	for _, name := range names {
		task, err := e.local.ReadTask(name)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			e.logger.Warn("skipping malformed task file", "file", name, "error", err)
			warn(name, err.Error())
			if key, ok := e.local.Identify(name); ok {
				set.unreadable[key] = name
			}
			continue
		}
		if task.Remote != nil {
			key := task.Remote.Key()
			if prev, dup := owners[key]; dup {
				msg := fmt.Sprintf("%v: %s is already linked by %s", types.ErrMalformedLocalRecord, key, prev)
				e.logger.Warn("skipping duplicate link", "file", name, "record", key, "owner", prev)
				warn(name, msg)
				continue
			}
			owners[key] = name
		}
		set.tasks = append(set.tasks, task)
	}
	return set, nil
}
