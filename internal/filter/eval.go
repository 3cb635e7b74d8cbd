package filter

import (
	"strings"

	"github.com/Mschirtzinger/boardsync/internal/types"
)

// Match evaluates the filter against a record. currentUser resolves "@me";
// when it is empty, "@me" matches nothing. Match has no side effects.
func (f *Filter) Match(rec *types.RemoteRecord, currentUser string) bool {
	if rec == nil {
		return false
	}
	if f.matchAll && len(f.terms) == 0 {
		return true
	}
	for _, term := range f.terms {
		if matchTerm(term, rec, currentUser) == term.Negate {
			return false
		}
	}
	return true
}

func matchTerm(term Term, rec *types.RemoteRecord, currentUser string) bool {
	switch term.Key {
	case KeyAssignee:
		want := term.Value
		if want == Me {
			if currentUser == "" {
				return false
			}
			want = currentUser
		}
		return containsFold(rec.Assignees, strings.TrimPrefix(want, "@"))
	case KeyLabel:
		return containsFold(rec.Labels, term.Value)
	case KeyIs:
		return matchIs(term.Value, rec)
	case KeyMilestone:
		return strings.EqualFold(rec.Milestone, term.Value)
	case KeyRepo:
		return strings.EqualFold(rec.Origin, term.Value)
	default:
		needle := strings.ToLower(term.Value)
		return strings.Contains(strings.ToLower(rec.Title), needle) ||
			strings.Contains(strings.ToLower(rec.Body), needle)
	}
}

func matchIs(value string, rec *types.RemoteRecord) bool {
	switch strings.ToLower(value) {
	case "open":
		return !rec.IsClosed()
	case "closed":
		return rec.IsClosed()
	case "assigned":
		return len(rec.Assignees) > 0
	case "unassigned":
		return len(rec.Assignees) == 0
	case "issue":
		return true
	default:
		return false
	}
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

// Set is a list of filters combined with OR: a record matches when any
// filter matches. An empty Set matches nothing.
type Set []*Filter

// ParseAll parses each expression, failing on the first invalid one.
func ParseAll(exprs []string) (Set, error) {
	set := make(Set, 0, len(exprs))
	for _, e := range exprs {
		f, err := Parse(e)
		if err != nil {
			return nil, err
		}
		set = append(set, f)
	}
	return set, nil
}

// Match reports whether any filter in the set accepts rec.
func (s Set) Match(rec *types.RemoteRecord, currentUser string) bool {
	for _, f := range s {
		if f.Match(rec, currentUser) {
			return true
		}
	}
	return false
}

// NeedsUser reports whether any filter references "@me".
func (s Set) NeedsUser() bool {
	for _, f := range s {
		for _, t := range f.terms {
			if t.Key == KeyAssignee && t.Value == Me {
				return true
			}
		}
	}
	return false
}
