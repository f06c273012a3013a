package bot

import (
	"errors"
	"testing"
)

// countingTransport fails the first failures calls of each method.
type countingTransport struct {
	failures int
	sends    int
	docs     int
	deletes  int
}

func (c *countingTransport) SendMessage(chatID int64, text string, keyboard [][]string) (int, error) {
	c.sends++
	if c.sends <= c.failures {
		return 0, errors.New("send failed")
	}
	return c.sends, nil
}

func (c *countingTransport) SendDocument(chatID int64, name string, data []byte) error {
	c.docs++
	if c.docs <= c.failures {
		return errors.New("send failed")
	}
	return nil
}

func (c *countingTransport) DeleteMessage(chatID int64, messageID int) error {
	c.deletes++
	if c.deletes <= c.failures {
		return errors.New("delete failed")
	}
	return nil
}

func TestRetrySender(t *testing.T) {
	t.Run("succeeds within attempt budget", func(t *testing.T) {
		inner := &countingTransport{failures: 2}
		r := newRetrySender(inner, 3, 0, NewNopLogger())

		if _, err := r.SendMessage(1, "hello", nil); err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
		if inner.sends != 3 {
			t.Errorf("got %d attempts, want 3", inner.sends)
		}
	})

	t.Run("gives up after attempt budget", func(t *testing.T) {
		inner := &countingTransport{failures: 10}
		r := newRetrySender(inner, 3, 0, NewNopLogger())

		if _, err := r.SendMessage(1, "hello", nil); err == nil {
			t.Fatal("expected error after exhausting attempts")
		}
		if inner.sends != 3 {
			t.Errorf("got %d attempts, want exactly 3", inner.sends)
		}
	})

	t.Run("first success needs one attempt", func(t *testing.T) {
		inner := &countingTransport{}
		r := newRetrySender(inner, 3, 0, NewNopLogger())

		if err := r.SendDocument(1, "f.txt", []byte("x")); err != nil {
			t.Fatalf("SendDocument() error = %v", err)
		}
		if inner.docs != 1 {
			t.Errorf("got %d attempts, want 1", inner.docs)
		}
	})

	t.Run("delete retries too", func(t *testing.T) {
		inner := &countingTransport{failures: 1}
		r := newRetrySender(inner, 2, 0, NewNopLogger())

		if err := r.DeleteMessage(1, 99); err != nil {
			t.Fatalf("DeleteMessage() error = %v", err)
		}
		if inner.deletes != 2 {
			t.Errorf("got %d attempts, want 2", inner.deletes)
		}
	})

	t.Run("zero attempts clamps to one", func(t *testing.T) {
		inner := &countingTransport{}
		r := newRetrySender(inner, 0, 0, NewNopLogger())

		if _, err := r.SendMessage(1, "hello", nil); err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
		if inner.sends != 1 {
			t.Errorf("got %d attempts, want 1", inner.sends)
		}
	})
}
