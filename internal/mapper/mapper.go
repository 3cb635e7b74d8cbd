// Package mapper maps remote categorical values (statuses, labels) to local
// canonical identifiers and back.
//
// Canonicalization is strict slugification. There is no fuzzy matching: a
// remote value either slugifies to a configured local id or it does not.
package mapper

import (
	"strings"
	"unicode"

	"github.com/Mschirtzinger/boardsync/internal/types"
)

// Slugify canonicalizes a remote value:
//
//   - lowercase
//   - runs of whitespace and hyphens become one underscore
//   - everything except ASCII letters, digits and underscores is dropped
//   - repeated underscores collapse, leading/trailing ones are trimmed
//   - a result that does not start with a letter gets a "col_" prefix
//
// Examples: "In Progress" -> "in_progress", "Done ✓" -> "done",
// "123 Numbers" -> "col_123_numbers".
func Slugify(value string) string {
	var b strings.Builder
	b.Grow(len(value))

	lastUnderscore := false
	for _, r := range strings.ToLower(value) {
		switch {
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = false
		}
	}

	slug := strings.Trim(b.String(), "_")
	if slug == "" || slug[0] < 'a' || slug[0] > 'z' {
		slug = "col_" + slug
	}
	return slug
}

// ToLocal canonicalizes a remote value into a local column id.
func ToLocal(remoteValue string) types.ColumnID {
	return types.ColumnID(Slugify(remoteValue))
}

// Placement is the result of resolving a remote value against the configured columns.
type Placement struct {
	Column types.ColumnID
	// Canonical is the slug the remote value produced.
	Canonical types.ColumnID
	// Unmapped is true when Canonical matched no configured column and the
	// task was placed under the first configured column instead. Callers
	// must log this.
	Unmapped bool
}

// Mapper resolves remote values against a configured column vocabulary.
type Mapper struct {
	columns []types.ColumnID
	known   map[types.ColumnID]bool
}

// New creates a Mapper for the given ordered columns. The first column is
// where unmapped values land.
func New(columns []types.ColumnID) *Mapper {
	known := make(map[types.ColumnID]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}
	return &Mapper{
		columns: append([]types.ColumnID(nil), columns...),
		known:   known,
	}
}

// Columns returns the configured columns in order.
func (m *Mapper) Columns() []types.ColumnID {
	return append([]types.ColumnID(nil), m.columns...)
}

// Has reports whether c is a configured column.
func (m *Mapper) Has(c types.ColumnID) bool {
	return m.known[c]
}

// Resolve maps a remote value onto a configured column. Values whose slug
// matches no column are never dropped: they are placed in the first column
// and flagged Unmapped.
func (m *Mapper) Resolve(remoteValue string) Placement {
	canonical := ToLocal(remoteValue)
	if m.known[canonical] {
		return Placement{Column: canonical, Canonical: canonical}
	}
	p := Placement{Canonical: canonical, Unmapped: true}
	if len(m.columns) > 0 {
		p.Column = m.columns[0]
	}
	return p
}

// ToRemote finds the remote value whose slug equals localID. The first match
// in knownValues order wins. It fails with types.ErrUnmappableValue when no
// known value slugifies to localID.
func ToRemote(localID types.ColumnID, knownValues []string) (string, error) {
	for _, v := range knownValues {
		if Slugify(v) == string(localID) {
			return v, nil
		}
	}
	return "", &types.UnmappableError{Field: "status", Value: string(localID), Known: knownValues}
}
