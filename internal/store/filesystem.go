package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"konntek-go/internal/bot"
)

// FileSystemStore keeps the container tree on local disk:
//
//	<root>/
//	  <target id>/
//	    <category>/
//	      <subcategory>/
//	        <file entries>
//	    logs/
//	      activity.log   (plain-text activity mirror)
type FileSystemStore struct {
	root string
}

// NewFileSystemStore creates a store rooted at the given path, creating the
// root if needed.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store root: %w", err)
	}
	return &FileSystemStore{root: root}, nil
}

// EnsureTarget creates the full container tree for a target. MkdirAll makes
// the operation idempotent and safe under concurrent calls for the same id:
// a duplicate create collapses to a no-op, never an error or a partial tree.
func (s *FileSystemStore) EnsureTarget(id string) (bool, error) {
	if err := validSegment(id); err != nil {
		return false, err
	}
	base := filepath.Join(s.root, id)

	_, err := os.Stat(base)
	existed := err == nil
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("checking target tree: %w", err)
	}

	// Create (or repair) the tree either way.
	for _, folder := range bot.TargetFolders() {
		if err := os.MkdirAll(filepath.Join(base, folder), 0755); err != nil {
			return false, fmt.Errorf("creating container %s: %w", folder, err)
		}
	}
	return !existed, nil
}

// ListTargets enumerates target directories under the root. A missing root
// is self-healed: it is recreated and the result is empty, not an error.
func (s *FileSystemStore) ListTargets() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			if merr := os.MkdirAll(s.root, 0755); merr != nil {
				return nil, fmt.Errorf("recreating store root: %w", merr)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("listing targets: %w", err)
	}

	var targets []string
	for _, e := range entries {
		if e.IsDir() && bot.ValidateIdentifier(e.Name()) {
			targets = append(targets, e.Name())
		}
	}
	sort.Strings(targets)
	return targets, nil
}

// ListFiles returns the file entry names in one container, sorted. A
// container that was never written to lists as empty.
func (s *FileSystemStore) ListFiles(target, category, subcategory string) ([]string, error) {
	dir, err := s.containerPath(target, category, subcategory)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing files: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// StoreFile writes a file entry, creating intermediate containers as needed.
// The write is atomic (temp file + rename), so a name collision overwrites
// the previous entry without readers ever seeing a partial file.
func (s *FileSystemStore) StoreFile(target, category, subcategory, name string, data []byte) error {
	dir, err := s.containerPath(target, category, subcategory)
	if err != nil {
		return err
	}
	if err := validSegment(name); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating container: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// FetchFile reads a file entry, returning bot.ErrNotFound if absent.
func (s *FileSystemStore) FetchFile(target, category, subcategory, name string) ([]byte, error) {
	dir, err := s.containerPath(target, category, subcategory)
	if err != nil {
		return nil, err
	}
	if err := validSegment(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, bot.ErrNotFound
		}
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

// AppendActivity appends one line to the target's activity mirror.
func (s *FileSystemStore) AppendActivity(target, line string) error {
	if err := validSegment(target); err != nil {
		return err
	}
	dir := filepath.Join(s.root, target, bot.LogsFolder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating logs container: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(dir, "activity.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening activity mirror: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("appending activity line: %w", err)
	}
	return nil
}

// DeleteTarget removes the target's entire tree. Returns false, without
// error, if the target never existed.
func (s *FileSystemStore) DeleteTarget(id string) (bool, error) {
	if err := validSegment(id); err != nil {
		return false, err
	}
	base := filepath.Join(s.root, id)

	if _, err := os.Stat(base); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking target tree: %w", err)
	}
	if err := os.RemoveAll(base); err != nil {
		return false, fmt.Errorf("removing target tree: %w", err)
	}
	return true, nil
}

// containerPath joins root/target/category[/subcategory], validating each
// segment so menu-supplied strings can never climb out of the tree.
func (s *FileSystemStore) containerPath(target, category, subcategory string) (string, error) {
	for _, seg := range []string{target, category} {
		if err := validSegment(seg); err != nil {
			return "", err
		}
	}
	if subcategory == "" {
		return filepath.Join(s.root, target, category), nil
	}
	if err := validSegment(subcategory); err != nil {
		return "", err
	}
	return filepath.Join(s.root, target, category, subcategory), nil
}

// validSegment rejects path segments that are empty or contain separators.
func validSegment(seg string) error {
	if seg == "" || seg == "." || seg == ".." ||
		strings.ContainsAny(seg, `/\`) {
		return fmt.Errorf("invalid path segment: %q", seg)
	}
	return nil
}

// Compile-time check that FileSystemStore implements bot.Store.
var _ bot.Store = (*FileSystemStore)(nil)
