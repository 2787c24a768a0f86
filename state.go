package shell

import (
	"errors"
)

// State is the application lifecycle state.
//
// Transitions: Uninitialized -> Active <-> Suspended -> Destroyed, with
// Destroyed terminal and reachable from every state. Active implies a valid
// GPU surface exists (or is pending a nonzero size); Suspended and Destroyed
// imply no presentation occurs.
type State int

const (
	StateUninitialized State = iota
	StateActive
	StateSuspended
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateSuspended:
		return "suspended"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// SurfaceController is the surface side of the lifecycle contract. The
// Machine drives it on transitions; SurfaceManager is the production
// implementation.
type SurfaceController interface {
	// Create binds a surface to a window, initializing the device if needed.
	Create(handle WindowHandle, width, height int) error

	// Reconfigure applies a new size, re-creating the surface if it was
	// released. Idempotent for an unchanged size.
	Reconfigure(width, height int) error

	// Release drops the surface. Must be idempotent.
	Release()
}

// windowInvalidator is implemented by controllers that can forget the window
// handle together with the surface (SurfaceManager.InvalidateWindow).
type windowInvalidator interface {
	InvalidateWindow()
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithVolatileWindow marks the window handle as invalid after every suspend.
// Android destroys the native window when the activity leaves the foreground,
// so a resume must wait for a fresh window-created event before the machine
// goes Active again.
func WithVolatileWindow() MachineOption {
	return func(m *Machine) { m.volatile = true }
}

// Machine is the lifecycle state machine. It consumes normalized events,
// drives the SurfaceController, and gates whether frame submission is
// permitted (State() == StateActive).
//
// Events that are not valid for the current state are ignored, never errors;
// platform runtimes emit such sequences routinely. The only event honored
// from every state is EventDestroy. Apply returns an error only for fatal
// conditions (ErrDeviceUnavailable).
//
// Machine is not safe for concurrent use; it runs on the app goroutine.
type Machine struct {
	surfaces SurfaceController

	state         State
	handle        WindowHandle // last known window handle, nil when invalid
	width, height int          // last known window size
	resumePending bool         // activation deferred until a usable window/size
	volatile      bool         // window handle does not survive suspend
}

// NewMachine creates a machine in StateUninitialized with the given initial
// window size.
func NewMachine(surfaces SurfaceController, width, height int, opts ...MachineOption) *Machine {
	m := &Machine{
		surfaces: surfaces,
		width:    width,
		height:   height,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current lifecycle state.
func (m *Machine) State() State { return m.state }

// Size returns the last known window size.
func (m *Machine) Size() (width, height int) { return m.width, m.height }

// Apply consumes one event and performs the resulting transition, if any.
func (m *Machine) Apply(ev Event) error {
	if m.state == StateDestroyed {
		Logger().Debug("event ignored, machine destroyed", "event", ev.String())
		return nil
	}

	switch e := ev.(type) {
	case EventWindowCreated:
		return m.onWindowCreated(e.Handle)
	case EventWindowResized:
		return m.onResized(e.Width, e.Height)
	case EventSuspend:
		m.onSuspend()
		return nil
	case EventResume:
		return m.onResume()
	case EventCloseRequested:
		// Only meaningful once a window exists.
		if m.state == StateActive || m.state == StateSuspended {
			m.destroy()
		} else {
			Logger().Debug("close request ignored", "state", m.state.String())
		}
		return nil
	case EventDestroy:
		m.destroy()
		return nil
	default:
		Logger().Debug("unknown event ignored", "event", ev.String())
		return nil
	}
}

func (m *Machine) onWindowCreated(handle WindowHandle) error {
	m.handle = handle
	switch m.state {
	case StateUninitialized:
		return m.activate()
	case StateSuspended:
		if m.resumePending {
			// Android quirk: resume arrived before the new native window.
			// Both are present now, so the deferred activation runs.
			return m.activate()
		}
		// Window arrived while backgrounded; keep the handle for resume.
		return nil
	case StateActive:
		// The platform replaced the window underneath us; rebind.
		return m.activate()
	default:
		return nil
	}
}

func (m *Machine) onResized(width, height int) error {
	m.width, m.height = width, height
	if m.state != StateActive {
		if m.resumePending && m.handle != nil && width > 0 && height > 0 {
			// A deferred activation (zero size or failed creation) can
			// proceed now that a usable size arrived.
			if m.state == StateSuspended {
				return m.onResume()
			}
			return m.activate()
		}
		// Size recorded; it is used when the surface is next created.
		return nil
	}
	err := m.surfaces.Reconfigure(width, height)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrZeroSize):
		// Minimized. The surface manager defers; frames are skipped until
		// a nonzero size arrives.
		Logger().Debug("resize deferred", "width", width, "height", height)
		return nil
	case errors.Is(err, ErrDeviceUnavailable):
		return err
	default:
		Logger().Warn("reconfigure failed, retrying on next event", "err", err)
		return nil
	}
}

func (m *Machine) onSuspend() {
	if m.state != StateActive {
		Logger().Debug("suspend ignored", "state", m.state.String())
		return
	}
	if m.volatile {
		if inv, ok := m.surfaces.(windowInvalidator); ok {
			inv.InvalidateWindow()
		} else {
			m.surfaces.Release()
		}
		m.handle = nil
	} else {
		m.surfaces.Release()
	}
	m.setState(StateSuspended)
}

func (m *Machine) onResume() error {
	if m.state != StateSuspended {
		Logger().Debug("resume ignored", "state", m.state.String())
		return nil
	}
	if m.handle == nil {
		// No usable window yet; stay Suspended until one arrives.
		m.resumePending = true
		return nil
	}
	err := m.surfaces.Reconfigure(m.width, m.height)
	switch {
	case err == nil:
		m.resumePending = false
		m.setState(StateActive)
		return nil
	case errors.Is(err, ErrZeroSize):
		m.resumePending = true
		return nil
	case errors.Is(err, ErrDeviceUnavailable):
		return err
	default:
		Logger().Warn("resume surface restore failed, retrying on next event", "err", err)
		m.resumePending = true
		return nil
	}
}

// activate creates the surface for the stored window and enters Active.
// Recoverable creation failures leave the state unchanged and arm a retry on
// the next resume, resize or window-created event.
func (m *Machine) activate() error {
	err := m.surfaces.Create(m.handle, m.width, m.height)
	switch {
	case err == nil:
		m.resumePending = false
		m.setState(StateActive)
		return nil
	case errors.Is(err, ErrZeroSize):
		m.resumePending = true
		return nil
	case errors.Is(err, ErrDeviceUnavailable):
		return err
	default:
		Logger().Warn("surface creation failed, retrying on next event", "err", err)
		m.resumePending = true
		return nil
	}
}

func (m *Machine) destroy() {
	// Release is idempotent: the surface may already be gone after a
	// suspend, and on Android the native window may be gone too.
	m.surfaces.Release()
	m.setState(StateDestroyed)
}

func (m *Machine) setState(s State) {
	if m.state == s {
		return
	}
	Logger().Info("lifecycle transition", "from", m.state.String(), "to", s.String())
	m.state = s
}
