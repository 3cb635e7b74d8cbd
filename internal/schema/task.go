package schema

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mschirtzinger/boardsync/internal/types"
)

// ReadTaskFile reads and parses the task file at path. A missing updated
// timestamp falls back to the file's modification time.
func ReadTaskFile(path string) (*types.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file %s: %w", path, err)
	}

	task, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse task file %s: %w", path, err)
	}
	task.Filename = filepath.Base(path)

	if task.UpdatedAt.IsZero() {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat task file %s: %w", path, err)
		}
		task.UpdatedAt = info.ModTime().UTC()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = task.UpdatedAt
	}
	return task, nil
}

// WriteTaskFile validates task and writes it to dir/task.Filename
// atomically: the content goes to a temp file in the same directory which
// is then renamed over the target, so readers never see a partial file.
// Errors wrap types.ErrLocalWriteFailure.
func WriteTaskFile(dir string, task *types.Task) error {
	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: cannot write invalid task: %v", types.ErrLocalWriteFailure, err)
	}

	data, err := Render(task)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrLocalWriteFailure, err)
	}

	if err := WriteAtomic(filepath.Join(dir, task.Filename), data); err != nil {
		return fmt.Errorf("%w: %v", types.ErrLocalWriteFailure, err)
	}
	return nil
}

// WriteAtomic writes data to path via a temp file and rename.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s: %w", path, err)
	}
	return nil
}
