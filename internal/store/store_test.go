package store

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Mschirtzinger/boardsync/internal/schema"
	"github.com/Mschirtzinger/boardsync/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	codec, err := schema.NewCodec([]string{"acme/web"})
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	s, err := Open(t.TempDir(), Options{DefaultColumn: "todo", Codec: codec})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func writeRaw(t *testing.T, s *Store, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(s.Dir(), name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func newTask(name, title string) *types.Task {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &types.Task{
		Filename:  name,
		Title:     title,
		Column:    "todo",
		CreatedAt: now,
		UpdatedAt: now,
		Format:    types.FormatYAML,
	}
}

func TestListFiles(t *testing.T) {
	s := openTestStore(t)

	writeRaw(t, s, "b.md", "x")
	writeRaw(t, s, "a.md", "x")
	writeRaw(t, s, "notes.txt", "x")
	writeRaw(t, s, ".tmp-a.md-123", "x")
	writeRaw(t, s, ".hidden.md", "x")
	if err := os.Mkdir(filepath.Join(s.Dir(), "archive"), 0755); err != nil {
		t.Fatal(err)
	}
	writeRaw(t, s, "archive/old.md", "x")

	names, err := s.ListFiles()
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	if len(names) != 2 || names[0] != "a.md" || names[1] != "b.md" {
		t.Errorf("ListFiles() = %v, want [a.md b.md]", names)
	}
}

func TestReadTaskDefaultsColumn(t *testing.T) {
	s := openTestStore(t)
	writeRaw(t, s, "idea.md", "---\ntitle: Idea\nupdated: 2026-03-01T12:00:00Z\n---\n\nbody\n")

	task, err := s.ReadTask("idea.md")
	if err != nil {
		t.Fatalf("ReadTask() error = %v", err)
	}
	if task.Column != "todo" {
		t.Errorf("Column = %q, want todo", task.Column)
	}
	if task.IsLinked() {
		t.Error("local file should not be linked")
	}
}

func TestReadTaskAdoptsSyncedFilename(t *testing.T) {
	s := openTestStore(t)
	writeRaw(t, s, "acme-web#12-fix-login.md", "---\ntitle: Fix login\ncolumn: doing\nupdated: 2026-03-01T12:00:00Z\n---\n")

	task, err := s.ReadTask("acme-web#12-fix-login.md")
	if err != nil {
		t.Fatalf("ReadTask() error = %v", err)
	}
	if !task.IsLinked() {
		t.Fatal("expected synced filename to be adopted as a link")
	}
	if task.Remote.Origin != "acme/web" || task.Remote.Number != 12 {
		t.Errorf("Remote = %+v", task.Remote)
	}
	if !task.Remote.LastSynced.IsZero() {
		t.Error("adopted link should have a zero checkpoint")
	}
}

func TestOpenScopesLoggerOnce(t *testing.T) {
	codec, err := schema.NewCodec([]string{"acme/web"})
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(t.TempDir(), Options{DefaultColumn: "todo", Codec: codec, Logger: logger})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	writeRaw(t, s, "acme-web#12-fix-login.md", "---\ntitle: Fix login\ncolumn: doing\nupdated: 2026-03-01T12:00:00Z\n---\n")
	if _, err := s.ReadTask("acme-web#12-fix-login.md"); err != nil {
		t.Fatalf("ReadTask() error = %v", err)
	}

	out := strings.TrimSpace(buf.String())
	if out == "" {
		t.Fatal("expected a debug record")
	}
	for _, line := range strings.Split(out, "\n") {
		if n := strings.Count(line, "component="); n != 1 {
			t.Errorf("record has %d component attributes: %s", n, line)
		}
	}
}

func TestReadTaskMalformed(t *testing.T) {
	s := openTestStore(t)
	writeRaw(t, s, "broken.md", "no front matter here\n")
	writeRaw(t, s, "untitled.md", "---\ncolumn: todo\n---\n")

	for _, name := range []string{"broken.md", "untitled.md"} {
		if _, err := s.ReadTask(name); !errors.Is(err, types.ErrMalformedLocalRecord) {
			t.Errorf("ReadTask(%s) error = %v, want ErrMalformedLocalRecord", name, err)
		}
	}

	if _, err := s.ReadTask("missing.md"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadTask(missing) error = %v, want not-exist", err)
	}
}

func TestWriteTaskRenamesLinkedFile(t *testing.T) {
	s := openTestStore(t)

	task := newTask("my-idea.md", "Fix login")
	if err := s.WriteTask(task); err != nil {
		t.Fatalf("WriteTask() error = %v", err)
	}

	task.Remote = &types.RemoteLink{Origin: "acme/web", Number: 7, LastSynced: task.UpdatedAt}
	if err := s.WriteTask(task); err != nil {
		t.Fatalf("WriteTask(linked) error = %v", err)
	}

	if task.Filename != "acme-web#7-fix-login.md" {
		t.Errorf("Filename = %q, want acme-web#7-fix-login.md", task.Filename)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "my-idea.md")); !os.IsNotExist(err) {
		t.Error("old file should be removed after rename")
	}
	if got := s.Index().Column("todo"); len(got) != 1 || got[0] != task.Filename {
		t.Errorf("index column = %v, want [%s]", got, task.Filename)
	}

	reread, err := s.ReadTask(task.Filename)
	if err != nil {
		t.Fatalf("ReadTask() error = %v", err)
	}
	if reread.Remote == nil || reread.Remote.Number != 7 {
		t.Errorf("reread Remote = %+v", reread.Remote)
	}
}

func TestWriteTaskKeepsMatchingSyncedName(t *testing.T) {
	s := openTestStore(t)

	task := newTask("acme-web#7-old-title.md", "New title")
	task.Remote = &types.RemoteLink{Origin: "acme/web", Number: 7}
	if err := s.WriteTask(task); err != nil {
		t.Fatalf("WriteTask() error = %v", err)
	}
	if task.Filename != "acme-web#7-old-title.md" {
		t.Errorf("Filename = %q, want name kept while identity matches", task.Filename)
	}
}

func TestWriteTaskInvalidKeepsFilename(t *testing.T) {
	s := openTestStore(t)

	task := newTask("x.md", "")
	err := s.WriteTask(task)
	if !errors.Is(err, types.ErrLocalWriteFailure) {
		t.Fatalf("WriteTask() error = %v, want ErrLocalWriteFailure", err)
	}
	if task.Filename != "x.md" {
		t.Errorf("Filename = %q, want unchanged on failure", task.Filename)
	}
}

func TestWriteTaskNeverReplacesAnotherFile(t *testing.T) {
	s := openTestStore(t)
	const existing = "acme-web#7-login-bug.md"
	writeRaw(t, s, existing, "---\ncolumn: [doing\n---\nlocal notes\n")

	task := newTask("", "Login bug")
	task.Remote = &types.RemoteLink{Origin: "acme/web", Number: 7}
	err := s.WriteTask(task)
	if !errors.Is(err, types.ErrLocalWriteFailure) {
		t.Fatalf("WriteTask() error = %v, want ErrLocalWriteFailure", err)
	}
	if task.Filename != "" {
		t.Errorf("Filename = %q, want unchanged on failure", task.Filename)
	}

	data, err := os.ReadFile(filepath.Join(s.Dir(), existing))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "---\ncolumn: [doing\n---\nlocal notes\n" {
		t.Errorf("existing file was modified: %q", data)
	}

	// Renaming an unlinked file onto an existing synced name is refused too.
	draft := newTask("draft.md", "Login bug")
	if err := s.WriteTask(draft); err != nil {
		t.Fatal(err)
	}
	draft.Remote = &types.RemoteLink{Origin: "acme/web", Number: 7}
	if err := s.WriteTask(draft); !errors.Is(err, types.ErrLocalWriteFailure) {
		t.Errorf("WriteTask(rename) error = %v, want ErrLocalWriteFailure", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "draft.md")); err != nil {
		t.Errorf("draft.md should survive a refused rename: %v", err)
	}
}

func TestIdentify(t *testing.T) {
	s := openTestStore(t)

	key, ok := s.Identify("acme-web#7-login-bug.md")
	if !ok || key != (types.RecordKey{Origin: "acme/web", Number: 7}) {
		t.Errorf("Identify() = %v, %v", key, ok)
	}
	if _, ok := s.Identify("draft.md"); ok {
		t.Error("Identify(draft.md) should not decode")
	}
}

func TestDeleteAndArchive(t *testing.T) {
	s := openTestStore(t)

	for _, name := range []string{"a.md", "b.md"} {
		if err := s.WriteTask(newTask(name, "Task "+name)); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.DeleteFile("a.md"); err != nil {
		t.Fatalf("DeleteFile() error = %v", err)
	}
	if err := s.DeleteFile("a.md"); err != nil {
		t.Errorf("DeleteFile(missing) error = %v, want nil", err)
	}

	if err := s.ArchiveFile("b.md"); err != nil {
		t.Fatalf("ArchiveFile() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "archive", "b.md")); err != nil {
		t.Errorf("archived file missing: %v", err)
	}

	names, _ := s.ListFiles()
	if len(names) != 0 {
		t.Errorf("ListFiles() = %v, want empty", names)
	}
	if got := s.Index().Column("todo"); len(got) != 0 {
		t.Errorf("index still lists %v", got)
	}
}
