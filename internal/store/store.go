// Package store implements the local task store: a directory of task files
// plus the per-column ordering index the board displays.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Mschirtzinger/boardsync/internal/logging"
	"github.com/Mschirtzinger/boardsync/internal/schema"
	"github.com/Mschirtzinger/boardsync/internal/types"
)

// OrderFile is the name of the ordering index inside the board directory.
const OrderFile = ".order.yaml"

// Options configures a Store.
type Options struct {
	// ArchiveDir receives archived files. Relative paths are resolved
	// against the board directory. Defaults to "archive".
	ArchiveDir string
	// DefaultColumn is applied to files that name no column.
	DefaultColumn types.ColumnID
	// Codec decodes synced filenames. Defaults to a codec with no
	// configured origins.
	Codec *schema.Codec
	// Logger for store activity. Defaults to slog.Default().
	Logger *slog.Logger
}

// Store is a board directory on disk. It assumes a single writer.
type Store struct {
	dir        string
	archiveDir string
	defaultCol types.ColumnID
	codec      *schema.Codec
	index      *OrderIndex
	logger     *slog.Logger
}

// Open opens the board directory, creating it if needed, and loads its
// ordering index.
func Open(dir string, opts Options) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create board directory: %w", err)
	}

	archive := opts.ArchiveDir
	if archive == "" {
		archive = "archive"
	}
	if !filepath.IsAbs(archive) {
		archive = filepath.Join(dir, archive)
	}

	codec := opts.Codec
	if codec == nil {
		codec, _ = schema.NewCodec(nil)
	}

	index, err := LoadOrderIndex(filepath.Join(dir, OrderFile))
	if err != nil {
		return nil, err
	}

	return &Store{
		dir:        dir,
		archiveDir: archive,
		defaultCol: opts.DefaultColumn,
		codec:      codec,
		index:      index,
		logger:     logging.Component(opts.Logger, "store"),
	}, nil
}

// Dir returns the board directory.
func (s *Store) Dir() string { return s.dir }

// Index returns the ordering index.
func (s *Store) Index() *OrderIndex { return s.index }

// ListFiles returns the task file names in the board directory, sorted.
// Hidden files, temp files and subdirectories are ignored.
func (s *Store) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read board directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, schema.Ext) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ReadTask reads one task file.
//
// A file whose name decodes to a remote identity but whose front matter has
// no remote block is adopted: it gets a link with a zero checkpoint, so the
// next pull treats both sides as changed. Errors other than a missing file
// wrap types.ErrMalformedLocalRecord.
func (s *Store) ReadTask(name string) (*types.Task, error) {
	path := filepath.Join(s.dir, name)
	task, err := schema.ReadTaskFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, types.ErrMalformedLocalRecord) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedLocalRecord, err)
	}

	if task.Column == "" {
		task.Column = s.defaultCol
	}
	if task.Format == "" {
		task.Format = types.FormatYAML
	}
	if task.Remote == nil {
		if d, ok := s.codec.Decode(name); ok {
			task.Remote = &types.RemoteLink{Origin: d.Origin, Number: d.Number}
			s.logger.Debug("adopting synced filename without remote block", "file", name, "record", task.Remote.Key())
		}
	}

	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", types.ErrMalformedLocalRecord, name, err)
	}
	return task, nil
}

// SyncedName returns the filename a linked task must have: its current name
// when that already decodes to the link's identity, otherwise a freshly
// encoded one.
func (s *Store) SyncedName(task *types.Task) string {
	if task.Remote == nil {
		return task.Filename
	}
	if d, ok := s.codec.Decode(task.Filename); ok && d.Origin == task.Remote.Origin && d.Number == task.Remote.Number {
		return task.Filename
	}
	return s.codec.Encode(task.Remote.Origin, task.Remote.Number, schema.TitleSlug(task.Title))
}

// Identify returns the remote identity encoded in a synced filename.
func (s *Store) Identify(name string) (types.RecordKey, bool) {
	d, ok := s.codec.Decode(name)
	if !ok {
		return types.RecordKey{}, false
	}
	return types.RecordKey{Origin: d.Origin, Number: d.Number}, true
}

// WriteTask writes task atomically and places it in the ordering index.
//
// For linked tasks the filename is recomputed first: if the current name
// does not encode the link's identity, the task is written under the
// encoded name and the old file is removed. task.Filename is updated to the
// name actually written. Writing under a new name never replaces a file
// that already exists there.
func (s *Store) WriteTask(task *types.Task) error {
	oldName := task.Filename
	newName := s.SyncedName(task)
	if newName == "" {
		return fmt.Errorf("%w: task has no filename", types.ErrLocalWriteFailure)
	}
	if newName != oldName {
		if _, err := os.Lstat(filepath.Join(s.dir, newName)); err == nil {
			return fmt.Errorf("%w: %s already exists", types.ErrLocalWriteFailure, newName)
		}
	}

	task.Filename = newName
	if err := schema.WriteTaskFile(s.dir, task); err != nil {
		task.Filename = oldName
		return err
	}

	if oldName != "" && oldName != newName {
		if err := os.Remove(filepath.Join(s.dir, oldName)); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove previous file after rename", "from", oldName, "to", newName, "error", err)
		}
		s.index.Rename(oldName, newName)
	}
	s.index.Place(newName, task.Column)
	return nil
}

// DeleteFile removes a task file and drops it from the index. Deleting a
// file that does not exist is not an error.
func (s *Store) DeleteFile(name string) error {
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", types.ErrLocalWriteFailure, err)
	}
	s.index.Remove(name)
	return nil
}

// ArchiveFile moves a task file into the archive directory.
func (s *Store) ArchiveFile(name string) error {
	if err := os.MkdirAll(s.archiveDir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create archive directory: %v", types.ErrLocalWriteFailure, err)
	}
	dst := filepath.Join(s.archiveDir, name)
	if _, err := os.Stat(dst); err == nil {
		ext := filepath.Ext(name)
		dst = filepath.Join(s.archiveDir, fmt.Sprintf("%s.%d%s", strings.TrimSuffix(name, ext), os.Getpid(), ext))
	}
	if err := os.Rename(filepath.Join(s.dir, name), dst); err != nil {
		return fmt.Errorf("%w: %v", types.ErrLocalWriteFailure, err)
	}
	s.index.Remove(name)
	return nil
}

// Flush persists the ordering index.
func (s *Store) Flush() error {
	return s.index.Save()
}
