package shell

import (
	"image"
	"time"

	"github.com/gogpu/gpucontext"
)

// Device is a process-wide GPU device/queue pair. It is created lazily by the
// SurfaceManager on first use and reused across surface recreations; only the
// SurfaceManager mutates it.
//
// Backends register a DeviceFactory via RegisterDevice. The software backend
// is always present as a fallback; importing gpu/wgpu adds the
// hardware-accelerated one.
type Device interface {
	// Name returns the backend identifier (e.g. "wgpu", "software").
	Name() string

	// CreateSwapchain binds a presentable surface to the given window.
	// The device resolves a zero Format in cfg to its preferred surface
	// format.
	CreateSwapchain(win WindowHandle, cfg SurfaceConfig) (Swapchain, error)

	// Provider exposes the device for sharing with rendering libraries
	// that accept a gpucontext.DeviceProvider (such as gg's accelerator).
	Provider() gpucontext.DeviceProvider

	// Close releases the device. The device must not be used afterwards.
	Close()
}

// Swapchain is the presentable surface bound to one window. It is exclusively
// owned by the SurfaceManager and never shared between goroutines.
type Swapchain interface {
	// Configure applies a new surface configuration. Callers are expected
	// to skip calls for an unchanged configuration; implementations may
	// additionally treat them as no-ops.
	Configure(cfg SurfaceConfig) error

	// Acquire obtains the next frame target, waiting at most timeout.
	// Failures are classified by the error taxonomy: ErrSurfaceOutdated and
	// ErrSurfaceLost ask for reconfiguration, ErrPresentTimeout drops the
	// frame.
	Acquire(timeout time.Duration) (FrameTarget, error)

	// Present displays an acquired target. The target is invalid afterwards.
	Present(t FrameTarget) error

	// Discard abandons an acquired target without presenting it.
	Discard(t FrameTarget)

	// Release drops the surface. After Release no method may touch the
	// underlying platform surface again; Release is idempotent.
	Release()
}

// FrameTarget is the writable destination for one frame. Renderers discover
// concrete capabilities with type assertions, in the spirit of optional
// interfaces:
//
//	if pt, ok := target.(shell.PixelTarget); ok {
//		draw(pt.RGBA())
//	}
type FrameTarget interface {
	// Size returns the target dimensions in pixels.
	Size() (width, height int)
}

// PixelTarget is implemented by CPU-backed frame targets.
type PixelTarget interface {
	FrameTarget

	// RGBA returns the writable pixel buffer for this frame.
	RGBA() *image.RGBA
}

// TextureTarget is implemented by GPU-backed frame targets.
type TextureTarget interface {
	FrameTarget

	// TextureView returns the backend texture view for this frame,
	// e.g. a wgpu hal.TextureView.
	TextureView() any
}

// DeviceFactory creates a device backend instance.
type DeviceFactory func() (Device, error)

var deviceRegistry = newRegistry[DeviceFactory]()

// RegisterDevice registers a GPU device backend under the given name.
// Higher priority backends are preferred by DefaultDevice. The available
// probe may be nil, meaning always available. Typically called from init()
// in backend packages.
func RegisterDevice(name string, priority int, factory DeviceFactory, available func() bool) {
	deviceRegistry.register(name, priority, factory, available)
}

// UnregisterDevice removes a backend. Useful for tests.
func UnregisterDevice(name string) {
	deviceRegistry.unregister(name)
}

// DeviceBackends returns the registered backend names, highest priority first.
func DeviceBackends() []string {
	return deviceRegistry.names()
}

// NewDevice creates the named device backend.
// Returns ErrDeviceUnavailable if the backend is unknown.
func NewDevice(name string) (Device, error) {
	factory, ok := deviceRegistry.get(name)
	if !ok {
		return nil, ErrDeviceUnavailable
	}
	return factory()
}

// DefaultDevice creates the best available device backend: the highest
// priority backend whose availability probe passes and whose factory
// succeeds. The software backend registered by this package guarantees a
// result unless it was explicitly unregistered.
func DefaultDevice() (Device, error) {
	var lastErr error
	for _, name := range deviceRegistry.names() {
		factory, ok := deviceRegistry.getAvailable(name)
		if !ok {
			continue
		}
		dev, err := factory()
		if err != nil {
			Logger().Warn("gpu backend failed to initialize", "backend", name, "err", err)
			lastErr = err
			continue
		}
		return dev, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrDeviceUnavailable
}
