package shell

import "errors"

// Failure taxonomy. DeviceUnavailable is the only condition surfaced to the
// host as fatal; everything else degrades to a dropped frame or a deferred
// state transition.
var (
	// ErrDeviceUnavailable is returned when no GPU device can be created.
	// Fatal: there is no recovery within a session.
	ErrDeviceUnavailable = errors.New("shell: gpu device unavailable")

	// ErrSurfaceCreation is returned when binding a surface to a window
	// fails. Recoverable: creation is retried on the next resume, resize
	// or window-created event.
	ErrSurfaceCreation = errors.New("shell: surface creation failed")

	// ErrSurfaceOutdated is returned when the swapchain no longer matches
	// the window (typically after a resize the surface has not seen yet).
	// Recoverable by reconfiguration.
	ErrSurfaceOutdated = errors.New("shell: surface outdated")

	// ErrSurfaceLost is returned when the surface or its device went away
	// underneath us, e.g. Android destroyed the native window. Recoverable:
	// the surface is fully re-created on the next resume or resize.
	ErrSurfaceLost = errors.New("shell: surface lost")

	// ErrPresentTimeout is returned when acquiring or presenting a frame
	// exceeded its bounded wait. Recoverable: the frame is dropped.
	ErrPresentTimeout = errors.New("shell: presentation timed out")

	// ErrZeroSize is returned when a surface operation is requested for a
	// zero-sized (minimized) window. The operation is deferred until a
	// nonzero size arrives.
	ErrZeroSize = errors.New("shell: zero-sized surface")

	// ErrSurfaceReleased is returned by swapchain operations after Release.
	ErrSurfaceReleased = errors.New("shell: surface released")

	// ErrFramePresented is returned when a frame target is used twice.
	ErrFramePresented = errors.New("shell: frame already presented")
)

// Recoverable reports whether err is a presentation-class failure the frame
// loop may recover from by reconfiguring the surface and retrying or dropping
// the frame. ErrDeviceUnavailable is never recoverable.
func Recoverable(err error) bool {
	return errors.Is(err, ErrSurfaceOutdated) ||
		errors.Is(err, ErrSurfaceLost) ||
		errors.Is(err, ErrPresentTimeout) ||
		errors.Is(err, ErrSurfaceReleased) ||
		errors.Is(err, ErrZeroSize)
}
