package blob

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndOpen(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	name, err := s.Save(strings.NewReader("audio bytes"), "my song.mp3")
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if !strings.HasSuffix(name, "-my_song.mp3") {
		t.Fatalf("expected generated name to keep a sanitized original, got %q", name)
	}

	f, err := s.Open(name)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if string(data) != "audio bytes" {
		t.Fatalf("unexpected blob content %q", data)
	}
}

func TestRemoveMissingIsNoop(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.Remove("1234-gone.mp3"); err != nil {
		t.Fatalf("Remove of missing blob should succeed, got %v", err)
	}
}

func TestPathTraversalRejected(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := s.Open("../etc/passwd"); !errors.Is(err, ErrBadName) {
		t.Fatalf("expected ErrBadName, got %v", err)
	}
	if err := s.Remove("a/b.mp3"); !errors.Is(err, ErrBadName) {
		t.Fatalf("expected ErrBadName, got %v", err)
	}
}

func TestUploadDiscardRemovesStagedFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	up := s.Begin()
	name, err := up.Add(strings.NewReader("cover"), "cover.png")
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	up.Discard()

	if _, err := os.Stat(filepath.Join(dir, name)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected staged file to be removed after discard, stat err = %v", err)
	}
}

func TestUploadCommitKeepsFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	up := s.Begin()
	name, err := up.Add(strings.NewReader("cover"), "cover.png")
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}

	up.Commit()
	up.Discard() // deferred in handlers; must be a no-op after commit

	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		t.Fatalf("expected committed file to survive discard, stat err = %v", err)
	}
}
