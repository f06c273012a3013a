package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"konntek-go/internal/bot"
)

// MemoryStore keeps the whole container tree in maps. It exists for tests
// and for running the bot without persistence.
type MemoryStore struct {
	mu sync.RWMutex
	// targets -> container path ("category" or "category/subcategory")
	// -> file name -> contents
	targets map[string]map[string]map[string][]byte
	// targets -> activity mirror lines
	activity map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		targets:  make(map[string]map[string]map[string][]byte),
		activity: make(map[string][]string),
	}
}

func (s *MemoryStore) EnsureTarget(id string) (bool, error) {
	if err := validSegment(id); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.targets[id]; ok {
		return false, nil
	}
	tree := make(map[string]map[string][]byte)
	for _, folder := range bot.TargetFolders() {
		tree[folder] = make(map[string][]byte)
	}
	s.targets[id] = tree
	return true, nil
}

func (s *MemoryStore) ListTargets() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var targets []string
	for id := range s.targets {
		targets = append(targets, id)
	}
	sort.Strings(targets)
	return targets, nil
}

func (s *MemoryStore) ListFiles(target, category, subcategory string) ([]string, error) {
	key, err := containerKey(target, category, subcategory)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	tree, ok := s.targets[target]
	if !ok {
		return nil, nil
	}
	var files []string
	for name := range tree[key] {
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

func (s *MemoryStore) StoreFile(target, category, subcategory, name string, data []byte) error {
	key, err := containerKey(target, category, subcategory)
	if err != nil {
		return err
	}
	if err := validSegment(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, ok := s.targets[target]
	if !ok {
		return fmt.Errorf("unknown target: %s", target)
	}
	container, ok := tree[key]
	if !ok {
		container = make(map[string][]byte)
		tree[key] = container
	}
	container[name] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) FetchFile(target, category, subcategory, name string) ([]byte, error) {
	key, err := containerKey(target, category, subcategory)
	if err != nil {
		return nil, err
	}
	if err := validSegment(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	tree, ok := s.targets[target]
	if !ok {
		return nil, bot.ErrNotFound
	}
	data, ok := tree[key][name]
	if !ok {
		return nil, bot.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) AppendActivity(target, line string) error {
	if err := validSegment(target); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activity[target] = append(s.activity[target], line)
	return nil
}

// Activity returns the accumulated mirror lines for a target. Test helper.
func (s *MemoryStore) Activity(target string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.activity[target]...)
}

func (s *MemoryStore) DeleteTarget(id string) (bool, error) {
	if err := validSegment(id); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.targets[id]; !ok {
		return false, nil
	}
	delete(s.targets, id)
	delete(s.activity, id)
	return true, nil
}

func containerKey(target, category, subcategory string) (string, error) {
	for _, seg := range []string{target, category} {
		if err := validSegment(seg); err != nil {
			return "", err
		}
	}
	if subcategory == "" {
		return category, nil
	}
	if err := validSegment(subcategory); err != nil {
		return "", err
	}
	return strings.Join([]string{category, subcategory}, "/"), nil
}

var _ bot.Store = (*MemoryStore)(nil)
