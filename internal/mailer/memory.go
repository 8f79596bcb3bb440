package mailer

import (
	"context"
	"sync"
)

// A Memory is a Mailer keeping the sent messages in memory.
type Memory struct {
	mu       sync.Mutex
	Err      error
	Messages []Message
}

// Send implements Mailer.
func (m *Memory) Send(_ context.Context, _ SMTP, message Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Messages = append(m.Messages, message)
	return nil
}

// Last returns the last sent message.
func (m *Memory) Last() (Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Messages) == 0 {
		return Message{}, false
	}
	return m.Messages[len(m.Messages)-1], true
}
