package shell

import (
	"testing"
)

// recordingController counts lifecycle-driven surface calls. Reconfigure
// re-creates after a release, like SurfaceManager does.
type recordingController struct {
	creates      int
	reconfigures int
	releases     int
	invalidates  int

	createErr      error
	reconfigureErr error

	released bool
	handle   WindowHandle
}

func (c *recordingController) Create(handle WindowHandle, width, height int) error {
	c.creates++
	if c.createErr != nil {
		return c.createErr
	}
	c.handle = handle
	c.released = false
	return nil
}

func (c *recordingController) Reconfigure(width, height int) error {
	if c.reconfigureErr != nil {
		c.reconfigures++
		return c.reconfigureErr
	}
	if c.released {
		return c.Create(c.handle, width, height)
	}
	c.reconfigures++
	return nil
}

// Release counts only effective releases, so tests observe idempotence.
func (c *recordingController) Release() {
	if !c.released {
		c.releases++
		c.released = true
	}
}

func (c *recordingController) InvalidateWindow() {
	c.invalidates++
	c.released = true
	c.handle = nil
}

func apply(t *testing.T, m *Machine, events ...Event) {
	t.Helper()
	for _, ev := range events {
		if err := m.Apply(ev); err != nil {
			t.Fatalf("Apply(%v) error = %v", ev, err)
		}
	}
}

func TestMachineTransitions(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   State
	}{
		{
			name:   "initial",
			events: nil,
			want:   StateUninitialized,
		},
		{
			name:   "window created activates",
			events: []Event{EventWindowCreated{Handle: "w"}},
			want:   StateActive,
		},
		{
			name:   "suspend from active",
			events: []Event{EventWindowCreated{Handle: "w"}, EventSuspend{}},
			want:   StateSuspended,
		},
		{
			name: "resume from suspended",
			events: []Event{
				EventWindowCreated{Handle: "w"}, EventSuspend{}, EventResume{},
			},
			want: StateActive,
		},
		{
			name:   "destroy from uninitialized",
			events: []Event{EventDestroy{}},
			want:   StateDestroyed,
		},
		{
			name: "destroy from suspended",
			events: []Event{
				EventWindowCreated{Handle: "w"}, EventSuspend{}, EventDestroy{},
			},
			want: StateDestroyed,
		},
		{
			name: "close requested from active",
			events: []Event{
				EventWindowCreated{Handle: "w"}, EventCloseRequested{},
			},
			want: StateDestroyed,
		},
		{
			name:   "close requested before a window is ignored",
			events: []Event{EventCloseRequested{}},
			want:   StateUninitialized,
		},
		{
			name:   "resume before activation is ignored",
			events: []Event{EventResume{}},
			want:   StateUninitialized,
		},
		{
			name:   "suspend before activation is ignored",
			events: []Event{EventSuspend{}},
			want:   StateUninitialized,
		},
		{
			name: "suspend twice stays suspended",
			events: []Event{
				EventWindowCreated{Handle: "w"}, EventSuspend{}, EventSuspend{},
			},
			want: StateSuspended,
		},
		{
			name: "events after destroy are ignored",
			events: []Event{
				EventDestroy{}, EventWindowCreated{Handle: "w"}, EventResume{},
			},
			want: StateDestroyed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(&recordingController{}, 800, 600)
			apply(t, m, tt.events...)
			if got := m.State(); got != tt.want {
				t.Errorf("State() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMachineFullSessionCounts(t *testing.T) {
	// A complete session: created, resized once while active, suspended,
	// resumed, destroyed. The surface is created once at activation and once
	// at resume (re-creation after the suspend release), reconfigured once
	// for the resize, and released twice (suspend, destroy).
	ctrl := &recordingController{}
	m := NewMachine(ctrl, 800, 600)
	apply(t, m,
		EventWindowCreated{Handle: "w"},
		EventWindowResized{1024, 768},
		EventSuspend{},
		EventResume{},
		EventDestroy{},
	)

	if m.State() != StateDestroyed {
		t.Fatalf("State() = %v, want %v", m.State(), StateDestroyed)
	}
	if ctrl.creates != 2 {
		t.Errorf("creates = %d, want 2", ctrl.creates)
	}
	if ctrl.reconfigures != 1 {
		t.Errorf("reconfigures = %d, want 1", ctrl.reconfigures)
	}
	if ctrl.releases != 2 {
		t.Errorf("releases = %d, want 2", ctrl.releases)
	}
}

func TestMachineResizeWhileSuspendedIsRecorded(t *testing.T) {
	ctrl := &recordingController{}
	m := NewMachine(ctrl, 800, 600)
	apply(t, m,
		EventWindowCreated{Handle: "w"},
		EventSuspend{},
		EventWindowResized{1024, 768},
	)
	if ctrl.reconfigures != 0 {
		t.Errorf("reconfigures = %d, want 0 while suspended", ctrl.reconfigures)
	}
	if w, h := m.Size(); w != 1024 || h != 768 {
		t.Errorf("Size() = %dx%d, want 1024x768", w, h)
	}
}

func TestMachineVolatileWindowResume(t *testing.T) {
	// Android: suspend invalidates the window; resume must wait for the
	// fresh window-created event before going Active.
	ctrl := &recordingController{}
	m := NewMachine(ctrl, 800, 600, WithVolatileWindow())
	apply(t, m,
		EventWindowCreated{Handle: "w1"},
		EventSuspend{},
	)
	if ctrl.invalidates != 1 {
		t.Fatalf("invalidates = %d, want 1", ctrl.invalidates)
	}

	apply(t, m, EventResume{})
	if m.State() != StateSuspended {
		t.Fatalf("State() after handle-less resume = %v, want %v", m.State(), StateSuspended)
	}

	apply(t, m, EventWindowCreated{Handle: "w2"})
	if m.State() != StateActive {
		t.Errorf("State() = %v, want %v", m.State(), StateActive)
	}
	if ctrl.handle != WindowHandle("w2") {
		t.Errorf("handle = %v, want w2", ctrl.handle)
	}
}

func TestMachineZeroSizeActivationDeferred(t *testing.T) {
	ctrl := &recordingController{createErr: ErrZeroSize}
	m := NewMachine(ctrl, 0, 0)
	apply(t, m, EventWindowCreated{Handle: "w"})
	if m.State() != StateUninitialized {
		t.Fatalf("State() = %v, want deferred activation", m.State())
	}

	// A usable size arrives: activation completes.
	ctrl.createErr = nil
	apply(t, m, EventWindowResized{800, 600})
	if m.State() != StateActive {
		t.Errorf("State() = %v, want %v", m.State(), StateActive)
	}
}

func TestMachineFatalDeviceError(t *testing.T) {
	ctrl := &recordingController{createErr: ErrDeviceUnavailable}
	m := NewMachine(ctrl, 800, 600)
	if err := m.Apply(EventWindowCreated{Handle: "w"}); err == nil {
		t.Error("Apply() error = nil, want ErrDeviceUnavailable")
	}
}

func TestMachineRecoverableCreateFailureRetries(t *testing.T) {
	ctrl := &recordingController{createErr: ErrSurfaceCreation}
	m := NewMachine(ctrl, 800, 600)
	apply(t, m, EventWindowCreated{Handle: "w"})
	if m.State() != StateUninitialized {
		t.Fatalf("State() = %v, want retry armed in Uninitialized", m.State())
	}

	ctrl.createErr = nil
	apply(t, m, EventWindowResized{800, 600})
	if m.State() != StateActive {
		t.Errorf("State() = %v, want %v after retry", m.State(), StateActive)
	}
}

func TestMachineWindowReplacedWhileActive(t *testing.T) {
	ctrl := &recordingController{}
	m := NewMachine(ctrl, 800, 600)
	apply(t, m,
		EventWindowCreated{Handle: "w1"},
		EventWindowCreated{Handle: "w2"},
	)
	if ctrl.creates != 2 {
		t.Errorf("creates = %d, want 2 (rebind)", ctrl.creates)
	}
	if ctrl.handle != WindowHandle("w2") {
		t.Errorf("handle = %v, want w2", ctrl.handle)
	}
}

func TestMachineDestroyReleasesOnceMore(t *testing.T) {
	// Destroy after suspend calls Release again; the controller must treat
	// it as idempotent.
	ctrl := &recordingController{}
	m := NewMachine(ctrl, 800, 600)
	apply(t, m,
		EventWindowCreated{Handle: "w"},
		EventSuspend{},
		EventDestroy{},
	)
	if ctrl.releases != 1 {
		t.Errorf("effective releases = %d, want 1 (second release is a no-op)", ctrl.releases)
	}
}
