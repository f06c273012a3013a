package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"konntek-go/internal/bot"
)

func TestFileSystemStoreCreatesFullTree(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileSystemStore(root)
	if err != nil {
		t.Fatalf("NewFileSystemStore failed: %v", err)
	}

	const target = "+33612345678"
	if _, err := s.EnsureTarget(target); err != nil {
		t.Fatalf("EnsureTarget failed: %v", err)
	}

	for _, folder := range bot.TargetFolders() {
		info, err := os.Stat(filepath.Join(root, target, folder))
		if err != nil {
			t.Errorf("missing container %s: %v", folder, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("container %s is not a directory", folder)
		}
	}
}

func TestFileSystemStoreActivityMirrorOnDisk(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileSystemStore(root)
	if err != nil {
		t.Fatalf("NewFileSystemStore failed: %v", err)
	}

	const target = "SERIAL42"
	if _, err := s.EnsureTarget(target); err != nil {
		t.Fatalf("EnsureTarget failed: %v", err)
	}
	if err := s.AppendActivity(target, "first"); err != nil {
		t.Fatalf("AppendActivity failed: %v", err)
	}
	if err := s.AppendActivity(target, "second"); err != nil {
		t.Fatalf("AppendActivity failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, target, bot.LogsFolder, "activity.log"))
	if err != nil {
		t.Fatalf("reading activity mirror: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 || lines[0] != "first" || lines[1] != "second" {
		t.Errorf("unexpected mirror contents: %q", string(data))
	}
}

func TestFileSystemStoreListTargetsSkipsStrayEntries(t *testing.T) {
	root := t.TempDir()
	s, err := NewFileSystemStore(root)
	if err != nil {
		t.Fatalf("NewFileSystemStore failed: %v", err)
	}

	if _, err := s.EnsureTarget("123456789012345"); err != nil {
		t.Fatalf("EnsureTarget failed: %v", err)
	}
	// A stray file and a directory that is not a valid identifier.
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "not a target"), 0755); err != nil {
		t.Fatal(err)
	}

	targets, err := s.ListTargets()
	if err != nil {
		t.Fatalf("ListTargets failed: %v", err)
	}
	if len(targets) != 1 || targets[0] != "123456789012345" {
		t.Errorf("expected only the real target, got %v", targets)
	}
}

func TestFileSystemStoreSelfHealsMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "vanished")
	s, err := NewFileSystemStore(root)
	if err != nil {
		t.Fatalf("NewFileSystemStore failed: %v", err)
	}
	if err := os.RemoveAll(root); err != nil {
		t.Fatal(err)
	}

	targets, err := s.ListTargets()
	if err != nil {
		t.Fatalf("ListTargets failed: %v", err)
	}
	if len(targets) != 0 {
		t.Errorf("expected empty result, got %v", targets)
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("expected root to be recreated: %v", err)
	}
}
