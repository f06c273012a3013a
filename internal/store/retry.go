package store

import (
	"errors"
	"time"

	"konntek-go/internal/bot"
)

// RetryStore wraps another store and retries failed operations a bounded
// number of times. Not-found results are terminal, not retried.
type RetryStore struct {
	inner    bot.Store
	attempts int
	delay    time.Duration
	logger   bot.Logger
}

func NewRetryStore(inner bot.Store, attempts int, delay time.Duration, logger bot.Logger) *RetryStore {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = &bot.NopLogger{}
	}
	return &RetryStore{inner: inner, attempts: attempts, delay: delay, logger: logger}
}

func (s *RetryStore) retry(op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		err = fn()
		if err == nil || errors.Is(err, bot.ErrNotFound) {
			return err
		}
		s.logger.Warn("store operation failed", "op", op, "attempt", attempt, "error", err)
		if attempt < s.attempts {
			time.Sleep(s.delay)
		}
	}
	return err
}

func (s *RetryStore) EnsureTarget(id string) (bool, error) {
	var created bool
	err := s.retry("ensure_target", func() error {
		var err error
		created, err = s.inner.EnsureTarget(id)
		return err
	})
	return created, err
}

func (s *RetryStore) ListTargets() ([]string, error) {
	var targets []string
	err := s.retry("list_targets", func() error {
		var err error
		targets, err = s.inner.ListTargets()
		return err
	})
	return targets, err
}

func (s *RetryStore) ListFiles(target, category, subcategory string) ([]string, error) {
	var files []string
	err := s.retry("list_files", func() error {
		var err error
		files, err = s.inner.ListFiles(target, category, subcategory)
		return err
	})
	return files, err
}

func (s *RetryStore) StoreFile(target, category, subcategory, name string, data []byte) error {
	return s.retry("store_file", func() error {
		return s.inner.StoreFile(target, category, subcategory, name, data)
	})
}

func (s *RetryStore) FetchFile(target, category, subcategory, name string) ([]byte, error) {
	var data []byte
	err := s.retry("fetch_file", func() error {
		var err error
		data, err = s.inner.FetchFile(target, category, subcategory, name)
		return err
	})
	return data, err
}

func (s *RetryStore) AppendActivity(target, line string) error {
	return s.retry("append_activity", func() error {
		return s.inner.AppendActivity(target, line)
	})
}

func (s *RetryStore) DeleteTarget(id string) (bool, error) {
	var removed bool
	err := s.retry("delete_target", func() error {
		var err error
		removed, err = s.inner.DeleteTarget(id)
		return err
	})
	return removed, err
}

var _ bot.Store = (*RetryStore)(nil)
