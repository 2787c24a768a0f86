//go:build !android

// Package desktop produces lifecycle events from a desktop window via the
// shiny screen driver (X11, Windows, macOS).
//
// The screen driver owns the main goroutine, so the entry point is inverted:
// Main blocks and the application runs in the callback, consuming the event
// source from its own goroutine.
package desktop

import (
	"sync"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/size"

	"github.com/duelgame/shell"
)

// Main opens a window sized and titled per cfg and invokes fn with an event
// source fed from the window's event loop. Main blocks until the window is
// gone and fn has returned; it must be called from the main goroutine.
func Main(cfg shell.Config, fn func(src shell.EventSource)) {
	driver.Main(func(s screen.Screen) {
		w, err := s.NewWindow(&screen.NewWindowOptions{
			Width:  cfg.Width,
			Height: cfg.Height,
			Title:  cfg.Title,
		})
		if err != nil {
			shell.Logger().Error("desktop window creation failed", "err", err)
			return
		}
		defer w.Release()

		src := &Source{
			ch:   make(chan shell.Event, 16),
			stop: make(chan struct{}),
			win:  w,
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			fn(src)
		}()

		src.pump()
		<-done
	})
}

// closeRequest is injected into the window's event queue by Source.Close.
type closeRequest struct{}

// Source adapts the shiny window event loop to a shell.EventSource.
// The window handle it emits is the underlying screen.Window.
type Source struct {
	ch   chan shell.Event
	stop chan struct{}
	win  screen.Window

	mu     sync.Mutex
	closed bool

	visible bool
	started bool
}

// Events returns the event channel. It closes when the window dies.
func (s *Source) Events() <-chan shell.Event { return s.ch }

// Close asks the event pump to shut down. Idempotent.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.stop)
		s.win.Send(closeRequest{})
	}
	return nil
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

// pump translates window events until the window reaches StageDead or Close
// is called. Runs on the driver goroutine.
func (s *Source) pump() {
	defer close(s.ch)
	for {
		switch e := s.win.NextEvent().(type) {
		case closeRequest:
			s.send(shell.EventDestroy{})
			return

		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				if !s.send(shell.EventCloseRequested{}) {
					return
				}
				s.send(shell.EventDestroy{})
				return
			}
			switch e.Crosses(lifecycle.StageVisible) {
			case lifecycle.CrossOn:
				if s.started {
					// Initial visibility is part of window creation, so
					// only later crossings become resume events.
					if !s.send(shell.EventResume{}) {
						return
					}
				}
				s.visible = true
			case lifecycle.CrossOff:
				if s.visible {
					if !s.send(shell.EventSuspend{}) {
						return
					}
				}
				s.visible = false
			}

		case size.Event:
			if !s.started {
				// The first size event means the native window exists.
				s.started = true
				if !s.send(shell.EventWindowCreated{Handle: s.win}) {
					return
				}
			}
			if !s.send(shell.EventWindowResized{Width: e.WidthPx, Height: e.HeightPx}) {
				return
			}

		case error:
			shell.Logger().Warn("window event error", "err", e)
		}
	}
}

var _ shell.EventSource = (*Source)(nil)
