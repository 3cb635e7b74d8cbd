package schema

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Mschirtzinger/boardsync/internal/types"
)

func sampleTask(format types.FrontMatterFormat) *types.Task {
	created := time.Date(2026, 1, 10, 7, 36, 29, 0, time.UTC)
	updated := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	return &types.Task{
		Filename:  "acme-widgets#42-fix-login.md",
		Title:     "Fix login",
		Column:    "in_progress",
		Priority:  "high",
		Type:      "bug",
		Tags:      []string{"auth", "urgent"},
		Body:      "Steps to reproduce:\n\n1. open the app",
		CreatedAt: created,
		UpdatedAt: updated,
		Format:    format,
		Remote: &types.RemoteLink{
			Origin:              "acme/widgets",
			Number:              42,
			NodeID:              "I_kwDOAbc123",
			LastSynced:          updated,
			PushPending:         true,
			CloseRemoteOnDelete: true,
		},
		Extra: map[string]any{"estimate": "2h"},
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	for _, format := range []types.FrontMatterFormat{types.FormatYAML, types.FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			want := sampleTask(format)
			data, err := Render(want)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}

			got, err := Parse(data)
			if err != nil {
				t.Fatalf("Parse: %v\n%s", err, data)
			}
			got.Filename = want.Filename

			if got.Title != want.Title || got.Column != want.Column || got.Priority != want.Priority || got.Type != want.Type {
				t.Errorf("scalar fields differ: got %+v", got)
			}
			if !reflect.DeepEqual(got.Tags, want.Tags) {
				t.Errorf("Tags = %v, want %v", got.Tags, want.Tags)
			}
			if got.Body != want.Body {
				t.Errorf("Body = %q, want %q", got.Body, want.Body)
			}
			if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
				t.Errorf("timestamps = %v / %v", got.CreatedAt, got.UpdatedAt)
			}
			if got.Remote == nil {
				t.Fatal("Remote lost")
			}
			if got.Remote.Origin != "acme/widgets" || got.Remote.Number != 42 || got.Remote.NodeID != "I_kwDOAbc123" ||
				!got.Remote.LastSynced.Equal(want.Remote.LastSynced) || !got.Remote.PushPending || !got.Remote.CloseRemoteOnDelete {
				t.Errorf("Remote = %+v", got.Remote)
			}
			if got.Extra["estimate"] != "2h" {
				t.Errorf("Extra = %v, want estimate preserved", got.Extra)
			}
			if got.Format != format {
				t.Errorf("Format = %q, want %q", got.Format, format)
			}
		})
	}
}

func TestParseHandWritten(t *testing.T) {
	data := "---\r\ntitle: Write docs\r\ncolumn: backlog\r\nupdated: 2026-02-01T10:00:00Z\r\n---\r\nBody line\r\n"
	task, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if task.Title != "Write docs" || task.Column != "backlog" {
		t.Errorf("task = %+v", task)
	}
	if task.Body != "Body line" {
		t.Errorf("Body = %q", task.Body)
	}
	if task.Remote != nil {
		t.Error("unexpected remote link")
	}
	if task.Extra != nil {
		t.Errorf("Extra = %v, want nil", task.Extra)
	}
}

func TestParseEmptyBody(t *testing.T) {
	task := sampleTask(types.FormatYAML)
	task.Body = ""
	data, err := Render(task)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	got, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Body != "" {
		t.Errorf("Body = %q, want empty", got.Body)
	}
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"no front matter": "just text\n",
		"unterminated":    "---\ntitle: x\n",
		"bad yaml":        "---\ntitle: [unclosed\n---\n",
		"bad toml":        "+++\ntitle = \n+++\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			if !errors.Is(err, types.ErrMalformedLocalRecord) {
				t.Errorf("Parse error = %v, want ErrMalformedLocalRecord", err)
			}
		})
	}
}

func TestWriteAndReadTaskFile(t *testing.T) {
	dir := t.TempDir()
	task := sampleTask(types.FormatYAML)

	if err := WriteTaskFile(dir, task); err != nil {
		t.Fatalf("WriteTaskFile: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one file (no temp leftovers), got %d", len(entries))
	}

	got, err := ReadTaskFile(filepath.Join(dir, task.Filename))
	if err != nil {
		t.Fatalf("ReadTaskFile: %v", err)
	}
	if got.Filename != task.Filename || got.Title != task.Title {
		t.Errorf("got %+v", got)
	}
}

func TestWriteTaskFileRejectsInvalid(t *testing.T) {
	task := sampleTask(types.FormatYAML)
	task.Title = ""
	err := WriteTaskFile(t.TempDir(), task)
	if !errors.Is(err, types.ErrLocalWriteFailure) {
		t.Errorf("error = %v, want ErrLocalWriteFailure", err)
	}
}

func TestReadTaskFileFallsBackToModTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.md")
	if err := os.WriteFile(path, []byte("---\ntitle: Note\ncolumn: backlog\n---\n"), 0644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	task, err := ReadTaskFile(path)
	if err != nil {
		t.Fatalf("ReadTaskFile: %v", err)
	}
	if !task.UpdatedAt.Equal(mtime) {
		t.Errorf("UpdatedAt = %v, want %v", task.UpdatedAt, mtime)
	}
	if !task.CreatedAt.Equal(mtime) {
		t.Errorf("CreatedAt = %v, want %v", task.CreatedAt, mtime)
	}
}

func TestRenderYAMLLayout(t *testing.T) {
	data, err := Render(sampleTask(types.FormatYAML))
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "---\ntitle: Fix login\n") {
		t.Errorf("unexpected prefix:\n%s", text)
	}
	if !strings.Contains(text, "last_synced: 2026-01-12T09:00:00Z") {
		t.Errorf("last_synced not ISO-8601:\n%s", text)
	}
}
