// Package replay provides a scripted event source: a fixed lifecycle event
// sequence delivered in order, optionally paced by a fixed delay. It backs
// headless runs and integration tests where no windowing system exists.
package replay

import (
	"sync"
	"time"

	"github.com/duelgame/shell"
)

// Source delivers a scripted event sequence. It implements shell.EventSource.
type Source struct {
	ch chan shell.Event

	mu     sync.Mutex
	closed bool
	stop   chan struct{}
}

// New creates a source that delivers the given events immediately and then
// closes its channel.
func New(events ...shell.Event) *Source {
	return NewPaced(0, events...)
}

// NewPaced creates a source that waits step between consecutive events.
// A zero step delivers everything as fast as the consumer drains it.
func NewPaced(step time.Duration, events ...shell.Event) *Source {
	s := &Source{
		ch:   make(chan shell.Event),
		stop: make(chan struct{}),
	}
	go s.pump(step, events)
	return s
}

func (s *Source) pump(step time.Duration, events []shell.Event) {
	defer close(s.ch)
	for _, ev := range events {
		if step > 0 {
			select {
			case <-time.After(step):
			case <-s.stop:
				return
			}
		}
		select {
		case s.ch <- ev:
		case <-s.stop:
			return
		}
	}
}

// Events returns the event channel. It closes after the final scripted event
// or after Close.
func (s *Source) Events() <-chan shell.Event { return s.ch }

// Close stops delivery. Undelivered events are dropped. Idempotent.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.stop)
	}
	return nil
}

var _ shell.EventSource = (*Source)(nil)
