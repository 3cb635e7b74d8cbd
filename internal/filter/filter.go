// Package filter implements the small search language that selects which
// remote records take part in a sync.
//
// An expression is a whitespace-separated list of terms. A term is either
// free text, the wildcard "*", or key:value with key one of assignee, label,
// is, milestone, repo. Values may be double-quoted to include spaces, and a
// leading "-" negates a keyed term. Terms inside one expression are
// AND-combined; a Set of expressions is OR-combined.
//
//	assignee:@me label:urgent      both must hold
//	["assignee:@me", "label:urgent"]  either may hold
//
// "@me" is kept literally in the parsed Filter and resolved against the
// authenticated user when the filter is evaluated.
package filter

import (
	"strings"

	"github.com/Mschirtzinger/boardsync/internal/types"
)

// Key is a filter term qualifier.
type Key string

const (
	KeyText      Key = ""
	KeyAssignee  Key = "assignee"
	KeyLabel     Key = "label"
	KeyIs        Key = "is"
	KeyMilestone Key = "milestone"
	KeyRepo      Key = "repo"
)

// Me is the assignee placeholder for the authenticated user.
const Me = "@me"

var knownKeys = map[Key]bool{
	KeyAssignee:  true,
	KeyLabel:     true,
	KeyIs:        true,
	KeyMilestone: true,
	KeyRepo:      true,
}

// Term is one predicate of an expression.
type Term struct {
	Key    Key
	Value  string
	Negate bool
}

func (t Term) String() string {
	var b strings.Builder
	if t.Negate {
		b.WriteByte('-')
	}
	if t.Key != KeyText {
		b.WriteString(string(t.Key))
		b.WriteByte(':')
	}
	if strings.ContainsAny(t.Value, " \t") {
		b.WriteString(`"` + t.Value + `"`)
	} else {
		b.WriteString(t.Value)
	}
	return b.String()
}

// Filter is a parsed expression. It is immutable once parsed.
type Filter struct {
	expr     string
	terms    []Term
	matchAll bool
}

// Expr returns the source expression.
func (f *Filter) Expr() string { return f.expr }

// Terms returns a copy of the parsed terms.
func (f *Filter) Terms() []Term { return append([]Term(nil), f.terms...) }

// MatchesAll reports whether the filter accepts every record.
func (f *Filter) MatchesAll() bool { return f.matchAll }

// Parse parses one expression. A keyed term without a value fails with
// types.ErrInvalidFilterSyntax. An empty expression, or one containing "*",
// matches every record.
func Parse(expr string) (*Filter, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}

	f := &Filter{expr: expr}
	for _, tok := range tokens {
		if tok == "*" {
			f.matchAll = true
			continue
		}
		term, err := parseTerm(expr, tok)
		if err != nil {
			return nil, err
		}
		f.terms = append(f.terms, term)
	}
	if len(f.terms) == 0 {
		f.matchAll = true
	}
	return f, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(expr string) *Filter {
	f, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return f
}

func parseTerm(expr, tok string) (Term, error) {
	raw := tok
	negate := false
	if strings.HasPrefix(tok, "-") && len(tok) > 1 {
		negate = true
		tok = tok[1:]
	}

	key, value, found := strings.Cut(tok, ":")
	if !found || !knownKeys[Key(strings.ToLower(key))] {
		// Free text, including text that merely contains a colon.
		return Term{Key: KeyText, Value: unquote(raw)}, nil
	}

	value = unquote(value)
	if value == "" {
		return Term{}, &types.FilterSyntaxError{Expr: expr, Term: raw, Reason: "missing value after ':'"}
	}
	return Term{Key: Key(strings.ToLower(key)), Value: value, Negate: negate}, nil
}

// tokenize splits on whitespace, keeping double-quoted runs together.
func tokenize(expr string) ([]string, error) {
	var (
		tokens  []string
		current strings.Builder
		quoted  bool
	)
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range expr {
		switch {
		case r == '"':
			quoted = !quoted
			current.WriteRune(r)
		case !quoted && (r == ' ' || r == '\t' || r == '\n'):
			flush()
		default:
			current.WriteRune(r)
		}
	}
	if quoted {
		return nil, &types.FilterSyntaxError{Expr: expr, Term: current.String(), Reason: "unterminated quote"}
	}
	flush()
	return tokens, nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
