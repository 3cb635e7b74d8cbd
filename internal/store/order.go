package store

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Mschirtzinger/boardsync/internal/schema"
	"github.com/Mschirtzinger/boardsync/internal/types"
)

// OrderIndex records the display order of task files within each column.
// It is persisted as YAML next to the task files.
type OrderIndex struct {
	path    string
	columns map[types.ColumnID][]string
	mu      sync.RWMutex
	dirty   bool
}

// LoadOrderIndex reads the index at path. A missing file yields an empty index.
func LoadOrderIndex(path string) (*OrderIndex, error) {
	idx := &OrderIndex{
		path:    path,
		columns: make(map[types.ColumnID][]string),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, fmt.Errorf("failed to read order index: %w", err)
	}

	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse order index %s: %w", path, err)
	}
	for col, names := range raw {
		idx.columns[types.ColumnID(col)] = names
	}
	return idx, nil
}

// Column returns the ordered file names in a column.
func (idx *OrderIndex) Column(col types.ColumnID) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]string(nil), idx.columns[col]...)
}

// ColumnOf returns the column a file is listed under.
func (idx *OrderIndex) ColumnOf(name string) (types.ColumnID, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	for col, names := range idx.columns {
		for _, n := range names {
			if n == name {
				return col, true
			}
		}
	}
	return "", false
}

// Place lists name under col. A file already in col keeps its position; a
// file in another column moves to the end of col.
func (idx *OrderIndex) Place(name string, col types.ColumnID) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for c, names := range idx.columns {
		for i, n := range names {
			if n != name {
				continue
			}
			if c == col {
				return
			}
			idx.columns[c] = append(names[:i:i], names[i+1:]...)
			break
		}
	}
	idx.columns[col] = append(idx.columns[col], name)
	idx.dirty = true
}

// Rename replaces oldName with newName, keeping its position.
func (idx *OrderIndex) Rename(oldName, newName string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for c, names := range idx.columns {
		for i, n := range names {
			if n == oldName {
				idx.columns[c][i] = newName
				idx.dirty = true
			}
		}
	}
}

// Remove drops name from whichever column lists it.
func (idx *OrderIndex) Remove(name string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for c, names := range idx.columns {
		for i, n := range names {
			if n == name {
				idx.columns[c] = append(names[:i:i], names[i+1:]...)
				idx.dirty = true
				break
			}
		}
	}
}

// Save writes the index if it changed since it was loaded or last saved.
func (idx *OrderIndex) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if !idx.dirty {
		return nil
	}

	raw := make(map[string][]string, len(idx.columns))
	for col, names := range idx.columns {
		if len(names) > 0 {
			raw[string(col)] = names
		}
	}
	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to encode order index: %w", err)
	}
	if err := schema.WriteAtomic(idx.path, data); err != nil {
		return fmt.Errorf("failed to save order index: %w", err)
	}
	idx.dirty = false
	return nil
}
