package types

import (
	"fmt"
	"regexp"
)

// ColumnID is a canonical column/state identifier.
//
// The vocabulary is open: valid ids come from configuration, not from a
// fixed list. A canonical id starts with a lowercase letter and contains
// only lowercase letters, digits and underscores.
type ColumnID string

var canonicalPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ParseColumnID validates s as a canonical identifier.
func ParseColumnID(s string) (ColumnID, error) {
	if !canonicalPattern.MatchString(s) {
		return "", fmt.Errorf("invalid column id %q: must match %s", s, canonicalPattern)
	}
	return ColumnID(s), nil
}

// IsCanonical reports whether s is already a canonical identifier.
func IsCanonical(s string) bool {
	return canonicalPattern.MatchString(s)
}

func (c ColumnID) String() string {
	return string(c)
}
