package store

import (
	"bytes"
	"errors"
	"testing"

	"konntek-go/internal/bot"
)

// storeUnderTest runs the shared behavior checks against any Store.
func storeUnderTest(t *testing.T, s bot.Store) {
	t.Helper()

	const target = "123456789012345"

	t.Run("EnsureTarget", func(t *testing.T) {
		created, err := s.EnsureTarget(target)
		if err != nil {
			t.Fatalf("EnsureTarget failed: %v", err)
		}
		if !created {
			t.Error("expected first EnsureTarget to report created")
		}

		created, err = s.EnsureTarget(target)
		if err != nil {
			t.Fatalf("second EnsureTarget failed: %v", err)
		}
		if created {
			t.Error("expected second EnsureTarget to report existing")
		}
	})

	t.Run("ListTargets", func(t *testing.T) {
		targets, err := s.ListTargets()
		if err != nil {
			t.Fatalf("ListTargets failed: %v", err)
		}
		if len(targets) != 1 || targets[0] != target {
			t.Errorf("expected [%s], got %v", target, targets)
		}
	})

	t.Run("EmptyContainerLists", func(t *testing.T) {
		files, err := s.ListFiles(target, "photos", "")
		if err != nil {
			t.Fatalf("ListFiles failed: %v", err)
		}
		if len(files) != 0 {
			t.Errorf("expected no files, got %v", files)
		}
	})

	t.Run("StoreAndFetch", func(t *testing.T) {
		data := []byte("capture contents")
		if err := s.StoreFile(target, "photos", "galerie", "img-001.jpg", data); err != nil {
			t.Fatalf("StoreFile failed: %v", err)
		}

		got, err := s.FetchFile(target, "photos", "galerie", "img-001.jpg")
		if err != nil {
			t.Fatalf("FetchFile failed: %v", err)
		}
		if !bytes.Equal(got, data) {
			t.Errorf("fetched contents mismatch: got %q", got)
		}

		files, err := s.ListFiles(target, "photos", "galerie")
		if err != nil {
			t.Fatalf("ListFiles failed: %v", err)
		}
		if len(files) != 1 || files[0] != "img-001.jpg" {
			t.Errorf("expected [img-001.jpg], got %v", files)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		if err := s.StoreFile(target, "photos", "galerie", "img-001.jpg", []byte("v2")); err != nil {
			t.Fatalf("StoreFile failed: %v", err)
		}
		got, err := s.FetchFile(target, "photos", "galerie", "img-001.jpg")
		if err != nil {
			t.Fatalf("FetchFile failed: %v", err)
		}
		if string(got) != "v2" {
			t.Errorf("expected overwritten contents, got %q", got)
		}
	})

	t.Run("FetchMissing", func(t *testing.T) {
		_, err := s.FetchFile(target, "photos", "galerie", "missing.jpg")
		if !errors.Is(err, bot.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("InvalidSegments", func(t *testing.T) {
		if err := s.StoreFile(target, "../escape", "", "f", nil); err == nil {
			t.Error("expected error for path traversal in category")
		}
		if _, err := s.FetchFile("..", "photos", "", "f"); err == nil {
			t.Error("expected error for path traversal in target")
		}
	})

	t.Run("AppendActivity", func(t *testing.T) {
		if err := s.AppendActivity(target, "[2026-01-02 15:04:05] UPLOAD: img-001.jpg"); err != nil {
			t.Fatalf("AppendActivity failed: %v", err)
		}
	})

	t.Run("DeleteTarget", func(t *testing.T) {
		removed, err := s.DeleteTarget(target)
		if err != nil {
			t.Fatalf("DeleteTarget failed: %v", err)
		}
		if !removed {
			t.Error("expected delete of existing target to report removed")
		}

		removed, err = s.DeleteTarget(target)
		if err != nil {
			t.Fatalf("second DeleteTarget failed: %v", err)
		}
		if removed {
			t.Error("expected delete of missing target to report not removed")
		}

		targets, err := s.ListTargets()
		if err != nil {
			t.Fatalf("ListTargets failed: %v", err)
		}
		if len(targets) != 0 {
			t.Errorf("expected no targets after delete, got %v", targets)
		}
	})
}

func TestFileSystemStore(t *testing.T) {
	s, err := NewFileSystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemStore failed: %v", err)
	}
	storeUnderTest(t, s)
}

func TestMemoryStore(t *testing.T) {
	storeUnderTest(t, NewMemoryStore())
}

func TestMemoryStoreActivityMirror(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.EnsureTarget("123456789012345"); err != nil {
		t.Fatalf("EnsureTarget failed: %v", err)
	}
	if err := s.AppendActivity("123456789012345", "line one"); err != nil {
		t.Fatalf("AppendActivity failed: %v", err)
	}
	if err := s.AppendActivity("123456789012345", "line two"); err != nil {
		t.Fatalf("AppendActivity failed: %v", err)
	}

	lines := s.Activity("123456789012345")
	if len(lines) != 2 || lines[0] != "line one" || lines[1] != "line two" {
		t.Errorf("unexpected activity lines: %v", lines)
	}
}
