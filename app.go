package shell

import (
	"context"
	"errors"
	"time"
)

// Option configures an App.
type Option func(*App)

// WithRenderer installs the application's render callback, invoked once per
// active tick with the writable frame target and elapsed time.
func WithRenderer(render RenderFunc) Option {
	return func(a *App) { a.render = render }
}

// WithDevice injects a specific GPU device instead of the lazily created
// registry default. Mostly useful for tests and tools.
func WithDevice(dev Device) Option {
	return func(a *App) { a.device = dev }
}

// WithFatalHandler installs the handler invoked when a fatal condition
// (ErrDeviceUnavailable) ends the session. Run also returns the error.
func WithFatalHandler(fn func(error)) Option {
	return func(a *App) { a.onFatal = fn }
}

// SessionStats aggregates the session's frame and surface counters.
type SessionStats struct {
	Frames              FrameStats
	SurfaceReconfigures uint64
}

// App wires the event source, lifecycle machine, surface manager and frame
// loop together and runs them on a single goroutine: platform event delivery
// and frame presentation are serialized so surface reconfiguration never
// races an in-flight frame.
type App struct {
	cfg     Config
	render  RenderFunc
	onFatal func(error)
	device  Device

	machine  *Machine
	surfaces *SurfaceManager
	loop     *FrameLoop
}

// New creates an App from the given configuration.
func New(cfg Config, opts ...Option) *App {
	a := &App{cfg: cfg.normalized()}
	for _, opt := range opts {
		opt(a)
	}

	a.surfaces = NewSurfaceManager(a.cfg.surfaceConfig(), a.device)

	var mopts []MachineOption
	if a.cfg.VolatileWindow {
		mopts = append(mopts, WithVolatileWindow())
	}
	a.machine = NewMachine(a.surfaces, a.cfg.Width, a.cfg.Height, mopts...)

	a.loop = NewFrameLoop(a.surfaces, a.render,
		WithGate(func() bool { return a.machine.State() == StateActive }),
		WithCancelCheck(func() bool { return a.machine.State() == StateDestroyed }),
		WithAcquireBound(a.cfg.AcquireTimeout),
	)
	return a
}

// State returns the current lifecycle state.
func (a *App) State() State { return a.machine.State() }

// Surfaces returns the surface manager, e.g. to reach the device provider for
// renderer device sharing.
func (a *App) Surfaces() *SurfaceManager { return a.surfaces }

// Stats returns the session counters.
func (a *App) Stats() SessionStats {
	return SessionStats{
		Frames:              a.loop.Stats(),
		SurfaceReconfigures: a.surfaces.Reconfigures(),
	}
}

// Run consumes events from src and drives the lifecycle until the machine is
// Destroyed, the source closes, or ctx is cancelled. While Active it also
// ticks the frame loop at the configured frame rate; while Suspended it
// blocks on events and burns no CPU.
//
// Run returns nil on a clean shutdown and the fatal error otherwise. It must
// only be called once.
func (a *App) Run(ctx context.Context, src EventSource) error {
	if src == nil {
		return errors.New("shell: nil event source")
	}
	defer a.surfaces.Close()
	defer func() { _ = src.Close() }()

	ticker := time.NewTicker(time.Second / time.Duration(a.cfg.FrameRate))
	defer ticker.Stop()

	events := src.Events()
	for a.machine.State() != StateDestroyed {
		if a.machine.State() == StateActive {
			select {
			case ev, ok := <-events:
				if err := a.handleEvents(ev, ok, events); err != nil {
					return a.fatal(err)
				}
			case <-ticker.C:
				if err := a.loop.Tick(); err != nil {
					return a.fatal(err)
				}
			case <-ctx.Done():
				_ = a.machine.Apply(EventDestroy{})
			}
		} else {
			select {
			case ev, ok := <-events:
				if err := a.handleEvents(ev, ok, events); err != nil {
					return a.fatal(err)
				}
			case <-ctx.Done():
				_ = a.machine.Apply(EventDestroy{})
			}
		}
	}
	return nil
}

// handleEvents applies one received event plus everything already pending on
// the channel, coalescing consecutive resizes to the latest size first.
func (a *App) handleEvents(first Event, ok bool, events <-chan Event) error {
	if !ok {
		// Source closed: the platform is gone.
		return a.machine.Apply(EventDestroy{})
	}

	pending := []Event{first}
drain:
	for {
		select {
		case ev, more := <-events:
			if !more {
				pending = append(pending, EventDestroy{})
				break drain
			}
			pending = append(pending, ev)
		default:
			break drain
		}
	}
	for _, ev := range coalesceResizes(pending) {
		Logger().Debug("event", "event", ev.String(), "state", a.machine.State().String())
		if err := a.machine.Apply(ev); err != nil {
			return err
		}
		switch ev.(type) {
		case EventWindowResized, EventResume, EventWindowCreated:
			// The surface had a chance to become valid again.
			a.loop.Unpark()
		}
	}
	return nil
}

func (a *App) fatal(err error) error {
	Logger().Error("fatal error, ending session", "err", err)
	if a.onFatal != nil {
		a.onFatal(err)
	}
	_ = a.machine.Apply(EventDestroy{})
	return err
}
