package testutil

import (
	"errors"
	"sync"
)

// SentMessage is one message captured by the FakeTransport.
type SentMessage struct {
	ChatID   int64
	Text     string
	Keyboard [][]string
}

// SentDocument is one document captured by the FakeTransport.
type SentDocument struct {
	ChatID int64
	Name   string
	Data   []byte
}

// FakeTransport records every outgoing message and supports failure
// injection for retry tests.
type FakeTransport struct {
	mu        sync.Mutex
	messages  []SentMessage
	documents []SentDocument
	deleted   []int

	nextID int

	// FailSends makes the next n SendMessage calls fail.
	failSends int
}

func NewFakeTransport() *FakeTransport {
	return &FakeTransport{}
}

// FailNextSends makes the next n SendMessage calls return an error.
func (f *FakeTransport) FailNextSends(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSends = n
}

func (f *FakeTransport) SendMessage(chatID int64, text string, keyboard [][]string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failSends > 0 {
		f.failSends--
		return 0, errors.New("injected send failure")
	}
	f.nextID++
	f.messages = append(f.messages, SentMessage{ChatID: chatID, Text: text, Keyboard: keyboard})
	return f.nextID, nil
}

func (f *FakeTransport) SendDocument(chatID int64, name string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.documents = append(f.documents, SentDocument{
		ChatID: chatID,
		Name:   name,
		Data:   append([]byte(nil), data...),
	})
	return nil
}

func (f *FakeTransport) DeleteMessage(chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

// Messages returns a copy of the captured messages.
func (f *FakeTransport) Messages() []SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentMessage(nil), f.messages...)
}

// LastMessage returns the most recent message, or a zero value if none.
func (f *FakeTransport) LastMessage() SentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return SentMessage{}
	}
	return f.messages[len(f.messages)-1]
}

// Documents returns a copy of the captured documents.
func (f *FakeTransport) Documents() []SentDocument {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentDocument(nil), f.documents...)
}

// Deleted returns the ids of deleted messages.
func (f *FakeTransport) Deleted() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.deleted...)
}
