package bot

import "time"

// Transport is the outbound side of the chat provider. A nil keyboard removes
// any previously shown keyboard.
type Transport interface {
	// SendMessage sends text with an optional reply keyboard and returns the
	// provider message id of the sent message.
	SendMessage(chatID int64, text string, keyboard [][]string) (int, error)

	// SendDocument sends a named file to the chat.
	SendDocument(chatID int64, name string, data []byte) error

	// DeleteMessage removes a previously sent message. Deleting an already
	// deleted message is not an error worth surfacing.
	DeleteMessage(chatID int64, messageID int) error
}

// retrySender wraps a Transport with a bounded retry around every outbound
// call, replacing the per-call retry loops the handlers would otherwise all
// repeat. After the attempts are exhausted the error is returned and the
// caller ends the conversation instead of leaving it silently stuck.
type retrySender struct {
	t        Transport
	attempts int
	delay    time.Duration
	logger   Logger
}

func newRetrySender(t Transport, attempts int, delay time.Duration, logger Logger) *retrySender {
	if attempts < 1 {
		attempts = 1
	}
	return &retrySender{t: t, attempts: attempts, delay: delay, logger: logger}
}

func (r *retrySender) SendMessage(chatID int64, text string, keyboard [][]string) (int, error) {
	var (
		id  int
		err error
	)
	for i := 0; i < r.attempts; i++ {
		id, err = r.t.SendMessage(chatID, text, keyboard)
		if err == nil {
			return id, nil
		}
		r.logger.Warn("send message failed", "chat", chatID, "attempt", i+1, "error", err)
		if i < r.attempts-1 {
			time.Sleep(r.delay)
		}
	}
	return 0, err
}

func (r *retrySender) SendDocument(chatID int64, name string, data []byte) error {
	var err error
	for i := 0; i < r.attempts; i++ {
		if err = r.t.SendDocument(chatID, name, data); err == nil {
			return nil
		}
		r.logger.Warn("send document failed", "chat", chatID, "attempt", i+1, "error", err)
		if i < r.attempts-1 {
			time.Sleep(r.delay)
		}
	}
	return err
}

func (r *retrySender) DeleteMessage(chatID int64, messageID int) error {
	var err error
	for i := 0; i < r.attempts; i++ {
		if err = r.t.DeleteMessage(chatID, messageID); err == nil {
			return nil
		}
		r.logger.Warn("delete message failed", "chat", chatID, "attempt", i+1, "error", err)
		if i < r.attempts-1 {
			time.Sleep(r.delay)
		}
	}
	return err
}
