package filter

import (
	"errors"
	"testing"

	"github.com/Mschirtzinger/boardsync/internal/types"
)

func record(assignees, labels []string) *types.RemoteRecord {
	return &types.RemoteRecord{
		Origin:    "acme/widgets",
		Number:    7,
		Title:     "Widget crashes on start",
		Body:      "Stack trace attached",
		State:     "open",
		Assignees: assignees,
		Labels:    labels,
		Milestone: "v1.0",
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		expr      string
		wantTerms []Term
		matchAll  bool
	}{
		{"*", nil, true},
		{"", nil, true},
		{"assignee:@me", []Term{{Key: KeyAssignee, Value: "@me"}}, false},
		{"assignee:@me label:urgent", []Term{
			{Key: KeyAssignee, Value: "@me"},
			{Key: KeyLabel, Value: "urgent"},
		}, false},
		{`label:"needs review" crash`, []Term{
			{Key: KeyLabel, Value: "needs review"},
			{Key: KeyText, Value: "crash"},
		}, false},
		{"-label:wontfix", []Term{{Key: KeyLabel, Value: "wontfix", Negate: true}}, false},
		{"Label:Bug", []Term{{Key: KeyLabel, Value: "Bug"}}, false},
		{"http://x", []Term{{Key: KeyText, Value: "http://x"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.expr, err)
			}
			if f.MatchesAll() != tt.matchAll {
				t.Errorf("MatchesAll = %v, want %v", f.MatchesAll(), tt.matchAll)
			}
			got := f.Terms()
			if len(got) != len(tt.wantTerms) {
				t.Fatalf("terms = %+v, want %+v", got, tt.wantTerms)
			}
			for i := range got {
				if got[i] != tt.wantTerms[i] {
					t.Errorf("term[%d] = %+v, want %+v", i, got[i], tt.wantTerms[i])
				}
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, expr := range []string{"label:", "assignee: label:x", "is:", `milestone:""`, `label:"open`} {
		t.Run(expr, func(t *testing.T) {
			_, err := Parse(expr)
			if !errors.Is(err, types.ErrInvalidFilterSyntax) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidFilterSyntax", expr, err)
			}
		})
	}
}

func TestParseKeepsMeLiteral(t *testing.T) {
	f := MustParse("assignee:@me")
	if f.Terms()[0].Value != Me {
		t.Errorf("@me should be stored literally, got %q", f.Terms()[0].Value)
	}
}

func TestMatch(t *testing.T) {
	rec := record([]string{"alice"}, []string{"urgent", "bug"})

	tests := []struct {
		expr string
		user string
		want bool
	}{
		{"*", "", true},
		{"assignee:@me", "alice", true},
		{"assignee:@me", "bob", false},
		{"assignee:@me", "", false},
		{"assignee:alice", "", true},
		{"assignee:@alice", "", true},
		{"label:URGENT", "", true},
		{"label:urgent label:bug", "", true},
		{"label:urgent label:docs", "", false},
		{"-label:docs", "", true},
		{"-label:bug", "", false},
		{"is:open", "", true},
		{"is:closed", "", false},
		{"is:assigned", "", true},
		{"milestone:v1.0", "", true},
		{"repo:acme/widgets", "", true},
		{"repo:acme/other", "", false},
		{"crashes", "", true},
		{"trace", "", true},
		{"missing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.expr+"/"+tt.user, func(t *testing.T) {
			if got := MustParse(tt.expr).Match(rec, tt.user); got != tt.want {
				t.Errorf("Match(%q, user=%q) = %v, want %v", tt.expr, tt.user, got, tt.want)
			}
		})
	}
}

func TestCompositionAndWithinOrAcross(t *testing.T) {
	both := record([]string{"alice"}, []string{"urgent"})
	mineOnly := record([]string{"alice"}, nil)
	urgentOnly := record([]string{"bob"}, []string{"urgent"})
	neither := record([]string{"bob"}, nil)

	and := MustParse("assignee:@me label:urgent")
	or, err := ParseAll([]string{"assignee:@me", "label:urgent"})
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}

	cases := []struct {
		name    string
		rec     *types.RemoteRecord
		wantAnd bool
		wantOr  bool
	}{
		{"both", both, true, true},
		{"mine only", mineOnly, false, true},
		{"urgent only", urgentOnly, false, true},
		{"neither", neither, false, false},
	}
	for _, c := range cases {
		if got := and.Match(c.rec, "alice"); got != c.wantAnd {
			t.Errorf("%s: AND match = %v, want %v", c.name, got, c.wantAnd)
		}
		if got := or.Match(c.rec, "alice"); got != c.wantOr {
			t.Errorf("%s: OR match = %v, want %v", c.name, got, c.wantOr)
		}
	}
}

func TestSet(t *testing.T) {
	if (Set{}).Match(record(nil, nil), "") {
		t.Error("empty set should match nothing")
	}

	_, err := ParseAll([]string{"*", "label:"})
	if !errors.Is(err, types.ErrInvalidFilterSyntax) {
		t.Errorf("ParseAll error = %v", err)
	}

	s, _ := ParseAll([]string{"label:x", "assignee:@me"})
	if !s.NeedsUser() {
		t.Error("NeedsUser should be true")
	}
	s, _ = ParseAll([]string{"label:x"})
	if s.NeedsUser() {
		t.Error("NeedsUser should be false")
	}
}

func TestMatchIsPure(t *testing.T) {
	f := MustParse("assignee:@me")
	rec := record([]string{"alice"}, nil)
	for i := 0; i < 3; i++ {
		if !f.Match(rec, "alice") {
			t.Fatal("repeated evaluation changed result")
		}
	}
	if f.Terms()[0].Value != Me {
		t.Error("evaluation mutated the filter")
	}
}
