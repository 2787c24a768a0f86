package replay

import (
	"sync"

	"github.com/duelgame/shell"
)

// Manual is an event source driven by explicit Send calls. Unlike Source it
// stays open after delivering its events, which suits headless runs and tests
// that decide mid-session when the application should end.
type Manual struct {
	ch chan shell.Event

	mu     sync.Mutex
	closed bool
}

// NewManual creates a manual source with the given channel capacity.
func NewManual(buffer int) *Manual {
	return &Manual{ch: make(chan shell.Event, buffer)}
}

// Send delivers one event. It reports false when the source is closed.
// Send blocks when the buffer is full.
func (m *Manual) Send(ev shell.Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.ch <- ev
	return true
}

// Events returns the event channel. It closes after Close.
func (m *Manual) Events() <-chan shell.Event { return m.ch }

// Close ends the stream. Consumers treat the closed channel as a destroy.
// Idempotent.
func (m *Manual) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.ch)
	}
	return nil
}

var _ shell.EventSource = (*Manual)(nil)
