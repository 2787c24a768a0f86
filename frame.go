package shell

import (
	"errors"
	"time"
)

// FrameContext is the ephemeral per-frame handle to the texture that will be
// presented. It is created by the frame loop for one tick and must not be
// retained by the render callback.
type FrameContext struct {
	target        FrameTarget
	width, height int
	elapsed       time.Duration
}

// Target returns the writable frame target. Renderers discover capabilities
// with type assertions (PixelTarget, TextureTarget).
func (fc *FrameContext) Target() FrameTarget { return fc.target }

// Size returns the frame dimensions in pixels.
func (fc *FrameContext) Size() (width, height int) { return fc.width, fc.height }

// Elapsed returns the time since the frame loop first became active.
func (fc *FrameContext) Elapsed() time.Duration { return fc.elapsed }

// RenderFunc is the application's render callback, invoked once per active
// tick. Returning an error drops the frame; it is never fatal to the loop.
type RenderFunc func(*FrameContext) error

// FrameStats counts frame outcomes over the session.
type FrameStats struct {
	// Presented is the number of frames shown on screen.
	Presented uint64
	// Dropped counts frames that were acquired but never presented.
	Dropped uint64
	// Skipped counts ticks where no frame was acquired (loop parked,
	// surface absent or zero-sized).
	Skipped uint64
}

// SurfaceSession is the frame loop's view of the surface layer.
// *SurfaceManager implements it.
type SurfaceSession interface {
	CanPresent() bool
	Size() (width, height int)
	Acquire(timeout time.Duration) (FrameTarget, error)
	Present(t FrameTarget) error
	Discard(t FrameTarget)
	Reconfigure(width, height int) error
}

// FrameLoopOption configures a FrameLoop.
type FrameLoopOption func(*FrameLoop)

// WithGate installs the frame submission gate. A tick does nothing while the
// gate reports false; the app wires this to Machine.State() == StateActive.
func WithGate(gate func() bool) FrameLoopOption {
	return func(l *FrameLoop) { l.gate = gate }
}

// WithCancelCheck installs the cancellation probe consulted between render
// and present. When it reports true the in-flight frame is discarded rather
// than presented (destroy arrived mid-frame).
func WithCancelCheck(cancelled func() bool) FrameLoopOption {
	return func(l *FrameLoop) { l.cancelled = cancelled }
}

// WithAcquireBound bounds the wait for a frame target.
func WithAcquireBound(d time.Duration) FrameLoopOption {
	return func(l *FrameLoop) {
		if d > 0 {
			l.acquireTimeout = d
		}
	}
}

// WithErrorSink installs the handler for failures the loop survives but
// reports upward, such as a second consecutive presentation failure.
func WithErrorSink(sink func(error)) FrameLoopOption {
	return func(l *FrameLoop) { l.onError = sink }
}

// FrameLoop drives frame presentation while the application is Active.
//
// Each tick acquires a frame target, invokes the render callback with it and
// the elapsed time, and presents. Recoverable acquisition failures request
// reconfiguration and skip the frame. Recoverable presentation failures get
// one retry after reconfiguration within the same tick; a second consecutive
// failure is reported to the error sink and parks the loop until the next
// resize or resume event unparks it.
//
// FrameLoop is not safe for concurrent use; it runs on the app goroutine.
type FrameLoop struct {
	surfaces SurfaceSession
	render   RenderFunc

	gate      func() bool
	cancelled func() bool
	onError   func(error)

	acquireTimeout time.Duration
	start          time.Time
	parked         bool
	stats          FrameStats
}

// NewFrameLoop creates a frame loop over the given surface session.
// A nil render callback presents frames without drawing into them.
func NewFrameLoop(surfaces SurfaceSession, render RenderFunc, opts ...FrameLoopOption) *FrameLoop {
	if render == nil {
		render = func(*FrameContext) error { return nil }
	}
	l := &FrameLoop{
		surfaces:       surfaces,
		render:         render,
		acquireTimeout: DefaultConfig().AcquireTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Parked reports whether the loop is parked after repeated presentation
// failures.
func (l *FrameLoop) Parked() bool { return l.parked }

// Unpark clears the parked flag. The app calls this when a resize, resume or
// window-created event gives the surface a chance to become valid again.
func (l *FrameLoop) Unpark() { l.parked = false }

// Stats returns the frame counters.
func (l *FrameLoop) Stats() FrameStats { return l.stats }

// Tick runs one frame. It returns an error only for fatal conditions
// (ErrDeviceUnavailable); every other failure degrades to a skipped or
// dropped frame.
func (l *FrameLoop) Tick() error {
	if l.parked || (l.gate != nil && !l.gate()) || !l.surfaces.CanPresent() {
		l.stats.Skipped++
		return nil
	}
	if l.start.IsZero() {
		l.start = time.Now()
	}

	target, err := l.surfaces.Acquire(l.acquireTimeout)
	if err != nil {
		return l.acquireFailed(err)
	}

	if err := l.renderTo(target); err != nil {
		return nil // frame dropped, already accounted
	}

	err = l.surfaces.Present(target)
	if err == nil {
		l.stats.Presented++
		return nil
	}
	if errors.Is(err, ErrDeviceUnavailable) {
		return err
	}
	if !Recoverable(err) {
		l.stats.Dropped++
		Logger().Warn("present failed, frame dropped", "err", err)
		return nil
	}

	// One retry after reconfiguration within the same tick. The first
	// failure is not counted yet: a tick that succeeds on retry still
	// presented exactly one frame and dropped none.
	Logger().Warn("present failed, reconfiguring and retrying", "err", err)
	if err := l.reconfigure(); err != nil {
		l.stats.Dropped++
		return l.secondFailure(err)
	}
	target, err = l.surfaces.Acquire(l.acquireTimeout)
	if err != nil {
		if errors.Is(err, ErrDeviceUnavailable) {
			return err
		}
		l.stats.Dropped++
		return l.secondFailure(err)
	}
	if err := l.renderTo(target); err != nil {
		return nil
	}
	err = l.surfaces.Present(target)
	if err == nil {
		l.stats.Presented++
		return nil
	}
	if errors.Is(err, ErrDeviceUnavailable) {
		return err
	}
	l.stats.Dropped++
	return l.secondFailure(err)
}

// acquireFailed handles a failed acquisition: recoverable reasons request
// reconfiguration and skip the frame; only device unavailability is fatal.
func (l *FrameLoop) acquireFailed(err error) error {
	if errors.Is(err, ErrDeviceUnavailable) {
		return err
	}
	l.stats.Skipped++
	if Recoverable(err) {
		Logger().Debug("acquire failed, reconfiguring", "err", err)
		if rErr := l.reconfigure(); rErr != nil && errors.Is(rErr, ErrDeviceUnavailable) {
			return rErr
		}
		return nil
	}
	Logger().Warn("acquire failed, frame skipped", "err", err)
	return nil
}

// renderTo invokes the render callback and checks for mid-frame cancellation.
// A non-nil return means the frame was discarded.
func (l *FrameLoop) renderTo(target FrameTarget) error {
	w, h := target.Size()
	fc := &FrameContext{
		target:  target,
		width:   w,
		height:  h,
		elapsed: time.Since(l.start),
	}
	if err := l.render(fc); err != nil {
		l.surfaces.Discard(target)
		l.stats.Dropped++
		Logger().Warn("render callback failed, frame dropped", "err", err)
		return err
	}
	if l.cancelled != nil && l.cancelled() {
		// Destroy arrived mid-frame: discard rather than present.
		l.surfaces.Discard(target)
		l.stats.Dropped++
		return errFrameCancelled
	}
	return nil
}

func (l *FrameLoop) reconfigure() error {
	w, h := l.surfaces.Size()
	return l.surfaces.Reconfigure(w, h)
}

// secondFailure parks the loop and reports the failure upward. The loop stays
// parked until the next resize or resume event.
func (l *FrameLoop) secondFailure(err error) error {
	if errors.Is(err, ErrDeviceUnavailable) {
		return err
	}
	l.parked = true
	Logger().Warn("presentation failed twice, loop parked", "err", err)
	if l.onError != nil {
		l.onError(err)
	}
	return nil
}

// errFrameCancelled is internal to the loop: the frame was discarded after
// rendering because destruction was requested.
var errFrameCancelled = errors.New("shell: frame cancelled")
