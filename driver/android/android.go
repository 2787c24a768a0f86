//go:build android

// Package android produces lifecycle events from an Android activity via
// golang.org/x/mobile/app.
//
// Android destroys the native window whenever the activity leaves the
// foreground and hands the process a fresh one on return, so resume and
// window-created arrive as separate events in either order. Hosts must run
// with Config.VolatileWindow set; Main does that.
package android

import (
	"sync"

	"golang.org/x/mobile/app"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/size"

	"github.com/duelgame/shell"
)

// Main runs the activity event loop and invokes fn with an event source fed
// from it. The config passed to fn's app must carry VolatileWindow; Main
// ensures that before calling fn. Main blocks for the lifetime of the
// activity and must be called from the main goroutine.
func Main(cfg shell.Config, fn func(cfg shell.Config, src shell.EventSource)) {
	cfg.VolatileWindow = true
	app.Main(func(a app.App) {
		src := &Source{
			ch:   make(chan shell.Event, 16),
			stop: make(chan struct{}),
			app:  a,
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			fn(cfg, src)
		}()

		src.pump()
		<-done
	})
}

// Source adapts the activity event stream to a shell.EventSource. The window
// handle it emits is the app.App, valid only between a window-created event
// and the next suspend.
type Source struct {
	ch   chan shell.Event
	stop chan struct{}
	app  app.App

	mu     sync.Mutex
	closed bool

	visible   bool
	hasWindow bool
}

// Events returns the event channel. It closes when the activity dies.
func (s *Source) Events() <-chan shell.Event { return s.ch }

// Close stops translating activity events. Idempotent.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.stop)
	}
	return nil
}

func (s *Source) stopped() bool {
	select {
	case <-s.stop:
		return true
	default:
		return false
	}
}

// send delivers an event unless Close already ran. The consumer may be gone
// by the time the pump produces, so a bare channel send could block forever.
func (s *Source) send(ev shell.Event) bool {
	select {
	case s.ch <- ev:
		return true
	case <-s.stop:
		return false
	}
}

// pump translates activity events until the activity reaches StageDead or
// Close is called. Runs on the app.Main goroutine.
func (s *Source) pump() {
	defer close(s.ch)
	for e := range s.app.Events() {
		if s.stopped() {
			return
		}
		switch e := s.app.Filter(e).(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				s.send(shell.EventDestroy{})
				return
			}
			switch e.Crosses(lifecycle.StageVisible) {
			case lifecycle.CrossOn:
				s.visible = true
				// The new native window is announced by the size event
				// that follows; see the size.Event case.
				if !s.send(shell.EventResume{}) {
					return
				}
			case lifecycle.CrossOff:
				s.visible = false
				s.hasWindow = false
				if !s.send(shell.EventSuspend{}) {
					return
				}
			}

		case size.Event:
			if s.visible && !s.hasWindow {
				// First size after becoming visible: the OS attached a
				// fresh native window to the activity.
				s.hasWindow = true
				if !s.send(shell.EventWindowCreated{Handle: s.app}) {
					return
				}
			}
			if !s.send(shell.EventWindowResized{Width: e.WidthPx, Height: e.HeightPx}) {
				return
			}
		}
	}
	// The activity's event channel closed underneath us.
	s.send(shell.EventDestroy{})
}

var _ shell.EventSource = (*Source)(nil)
