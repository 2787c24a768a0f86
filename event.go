package shell

import "fmt"

// WindowHandle identifies a platform window. It is opaque to the lifecycle
// core: event sources produce it and GPU device backends consume it. Backends
// that need native handles type-assert for the capabilities they require
// (see gpu/wgpu.RawWindow).
type WindowHandle any

// Event is a normalized platform lifecycle event. Exactly one consumer (the
// Machine) observes each event; sources deliver them in arrival order.
//
// The concrete types are EventWindowCreated, EventWindowResized,
// EventCloseRequested, EventSuspend, EventResume and EventDestroy.
type Event interface {
	isEvent()
	fmt.Stringer
}

// EventWindowCreated reports that the platform created (or re-created) the
// native window. On Android this arrives whenever the OS hands the process a
// new native window, which can happen on every resume.
type EventWindowCreated struct {
	Handle WindowHandle
}

// EventWindowResized reports a new window size in pixels. Desktop backends
// emit bursts of these during interactive resize; consecutive resizes are
// coalesced to the latest size before they reach the state machine.
type EventWindowResized struct {
	Width, Height int
}

// EventCloseRequested reports that the user asked to close the window.
type EventCloseRequested struct{}

// EventSuspend reports that the application left the foreground.
// No presentation may occur until a matching EventResume.
type EventSuspend struct{}

// EventResume reports that the application returned to the foreground.
// On Android this may arrive before the new native window exists; the state
// machine stays Suspended until a window handle is available again.
type EventResume struct{}

// EventDestroy reports that the platform is tearing the application down.
// It is honored from every state and is terminal.
type EventDestroy struct{}

func (EventWindowCreated) isEvent()   {}
func (EventWindowResized) isEvent()   {}
func (EventCloseRequested) isEvent()  {}
func (EventSuspend) isEvent()         {}
func (EventResume) isEvent()          {}
func (EventDestroy) isEvent()         {}

func (e EventWindowCreated) String() string { return "window-created" }
func (e EventWindowResized) String() string {
	return fmt.Sprintf("window-resized %dx%d", e.Width, e.Height)
}
func (EventCloseRequested) String() string { return "close-requested" }
func (EventSuspend) String() string        { return "suspend" }
func (EventResume) String() string         { return "resume" }
func (EventDestroy) String() string        { return "destroy" }

// coalesceResizes merges runs of consecutive EventWindowResized events into
// the last size of each run. Only the final size before the next non-resize
// event matters for surface reconfiguration cost; intermediate sizes would
// each trigger a swapchain rebuild.
//
// The relative order of all other events is preserved. The input slice is
// not modified.
func coalesceResizes(events []Event) []Event {
	if len(events) < 2 {
		return events
	}
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		if _, isResize := ev.(EventWindowResized); isResize {
			if len(out) > 0 {
				if _, prevResize := out[len(out)-1].(EventWindowResized); prevResize {
					out[len(out)-1] = ev
					continue
				}
			}
		}
		out = append(out, ev)
	}
	return out
}

// EventSource produces the ordered stream of normalized lifecycle events for
// one window. The channel is closed when the platform shuts down; a source is
// not restartable after that.
//
// Implementations live under driver/: desktop (x/exp/shiny), android
// (x/mobile) and replay (scripted).
type EventSource interface {
	// Events returns the event channel. The same channel is returned on
	// every call. It is closed after the final event.
	Events() <-chan Event

	// Close releases the source's platform resources. After Close the
	// event channel drains and closes. Close is idempotent.
	Close() error
}
